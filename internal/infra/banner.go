package infra

import (
	"fmt"
)

// ANSI Color Codes
const (
	ColorReset = "\033[0m"
	ColorCyan  = "\033[36m"
)

// PrintBanner displays the startup banner. Everything this system
// trades against is simulated, and the banner says so.
func PrintBanner(cfg *Config) {
	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#              SwapFlow Order Execution Engine            #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#   MODE:    SIMULATED VENUES (NO REAL FUNDS)             #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#   VERSION: %-36s #%s\n", ColorCyan, cfg.App.Version, ColorReset)
	fmt.Printf("%s#   LISTEN:  %-36s #%s\n", ColorCyan, cfg.Server.Addr, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s###########################################################%s\n", ColorCyan, ColorReset)
	fmt.Println()
}
