// Package meta describes a single run of a samplesite command.
// It's too heavy to attach to every log line, so it's logged once at startup and
// only the RunID is carried afterwards. Search the logs for "run metadata" to find the rest.
package meta

import (
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

// Run is everything you might want to know about the running command, all in one place.
type Run struct {
	AppName   string
	RunID     string // unique for each invocation
	StartTime time.Time
	OS        struct {
		Host string
		PID  int
		User string
	}
	Runtime struct{ GOARCH, GOOS, Version string }
}

// New describes the current process. Host and user are best effort: they're left empty if the OS won't say.
func New(appName string) Run {
	r := Run{AppName: appName, RunID: uuid.NewString(), StartTime: time.Now()}
	r.OS.Host, _ = os.Hostname()
	r.OS.PID = os.Getpid()
	if u, err := user.Current(); err == nil {
		r.OS.User = u.Username
	}
	r.Runtime.GOARCH, r.Runtime.GOOS, r.Runtime.Version = runtime.GOARCH, runtime.GOOS, runtime.Version()
	return r
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Run) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("app", r.AppName)
	enc.AddString("run_id", r.RunID)
	enc.AddTime("start", r.StartTime)
	enc.AddString("host", r.OS.Host)
	enc.AddInt("pid", r.OS.PID)
	enc.AddString("user", r.OS.User)
	enc.AddString("goarch", r.Runtime.GOARCH)
	enc.AddString("goos", r.Runtime.GOOS)
	enc.AddString("go", r.Runtime.Version)
	return nil
}
