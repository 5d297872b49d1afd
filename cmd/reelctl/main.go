package main

import (
	"os"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error("reelctl failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}
