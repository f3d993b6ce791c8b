package observability

import (
	"fmt"
	"runtime"
	"time"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

func PrintBanner() {
	banner := `
   _________    __  ______  ___    ______________   ____________
  / ____/   |  /  |/  / _ \/   |  /  _/ ____/ | / / ____/ __ \
 / /   / /| | / /|_/ / ___/ /| |  / // / __/  |/ / __/ / /_/ /
/ /___/ ___ |/ /  / / /  / ___ |_/ // /_/ / /|  / /___/ _, _/
\____/_/  |_/_/  /_/_/  /_/  |_/___/\____/_/ |_/_____/_/ |_|

        >> CAMPAIGN STRATEGY ORCHESTRATION ENGINE <<
`
	fmt.Printf("%s%s%s\n", colorNeonCyan, banner, colorReset)
	fmt.Printf("%s[ BOOT ] %s/%s | %d CPUs | %s%s\n\n",
		colorNeonMag,
		runtime.GOOS, runtime.GOARCH,
		runtime.NumCPU(),
		startTime.Format(time.RFC3339),
		colorReset,
	)
}
