package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"
)

func TestLevelFromString(t *testing.T) {
	qt.Assert(t, LevelFromString("debug"), qt.Equals, zap.DebugLevel)
	qt.Assert(t, LevelFromString("WARN"), qt.Equals, zap.WarnLevel)
	qt.Assert(t, LevelFromString("bogus"), qt.Equals, zap.InfoLevel)
}

func TestLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.log")
	Init("info", path)
	defer Init("error", "stderr")

	Infow("profile created", "profileId", 1, "handle", "alice")
	Debugf("this is filtered out")
	Logger().Sync()

	data, err := os.ReadFile(path)
	qt.Assert(t, err, qt.IsNil)
	out := string(data)
	qt.Assert(t, strings.Contains(out, "profile created"), qt.IsTrue)
	qt.Assert(t, strings.Contains(out, "handle"), qt.IsTrue)
	qt.Assert(t, strings.Contains(out, "filtered out"), qt.IsFalse)
}
