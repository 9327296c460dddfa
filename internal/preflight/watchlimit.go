package preflight

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// MinWatches is the inotify watch budget below which watching a home
// directory tree is likely to run out.
const MinWatches = 65536

// inotifyWatchesPath is a variable for tests.
var inotifyWatchesPath = "/proc/sys/fs/inotify/max_user_watches"

// CheckWatchLimit checks the per-user inotify watch limit on Linux. Other
// platforms watch without a per-directory budget.
func (c *Checker) CheckWatchLimit() CheckResult {
	result := CheckResult{
		Name: "watch_limit",
	}

	if runtime.GOOS != "linux" {
		result.Status = StatusPass
		result.Message = "not applicable on " + runtime.GOOS
		return result
	}

	data, err := os.ReadFile(inotifyWatchesPath)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot read %s: %v", inotifyWatchesPath, err)
		return result
	}

	limit, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("unexpected value %q", strings.TrimSpace(string(data)))
		return result
	}

	result.Message = fmt.Sprintf("%d (minimum: %d)", limit, MinWatches)
	if limit < MinWatches {
		result.Status = StatusWarn
		result.Details = "Raise fs.inotify.max_user_watches with sysctl"
		return result
	}

	result.Status = StatusPass
	return result
}
