// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package journal

import (
	"os"
	"path/filepath"

	"github.com/siemens/pingbridge/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation controls when journal files get rotated and how many rotated
// journal files are kept.
type Rotation struct {
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// DefaultRotation rotates journal files at 10MB, keeping five compressed
// journal files for up to two weeks.
var DefaultRotation = Rotation{
	MaxSizeMB:  10,
	MaxBackups: 5,
	MaxAgeDays: 14,
	Compress:   true,
}

// Journal writes outcomes as JSON lines into a rotated journal file. All
// entries of a Journal carry the same run ID, telling apart the entries of
// concurrent or subsequent runs sharing the same journal file.
type Journal struct {
	log *zap.Logger
	rot *lumberjack.Logger
	run string
}

// New returns a new Journal writing into the specified file, creating its
// directory if necessary.
func New(path string, rotation Rotation) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	rot := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(rot), zap.InfoLevel)
	run := uuid.NewString()
	return &Journal{
		log: zap.New(core).With(zap.String("run", run)),
		rot: rot,
		run: run,
	}, nil
}

// Run returns the run ID of this Journal.
func (j *Journal) Run() string { return j.run }

// Record the specified outcome of probing the specified target, where seq is
// the outcome's position in its series.
func (j *Journal) Record(target string, seq int, o types.Outcome) {
	fields := []zap.Field{
		zap.String("target", target),
		zap.Int("seq", seq),
		zap.String("type_name", o.TypeName()),
	}
	if ms, ok := o.DurationMS(); ok {
		fields = append(fields, zap.Float64("duration_ms", ms))
	}
	if code, ok := o.ExitCode(); ok {
		fields = append(fields, zap.Int("exit_code", code))
	}
	if stderr, ok := o.Stderr(); ok {
		fields = append(fields, zap.String("stderr", stderr))
	} else {
		fields = append(fields, zap.String("line", o.Line()))
	}
	if o.IsExited() || o.IsUnknown() {
		j.log.Warn("outcome", fields...)
		return
	}
	j.log.Info("outcome", fields...)
}

// Summarize records the statistics of probing the specified target.
func (j *Journal) Summarize(target string, stats types.Statistics) {
	j.log.Info("summary",
		zap.String("target", target),
		zap.Int("sent", stats.Sent),
		zap.Int("received", stats.Received),
		zap.Int("unknown", stats.Unknown),
		zap.Bool("exited", stats.Exited),
		zap.Float64("loss_percentage", stats.LossPercentage()),
		zap.Duration("min_rtt", stats.MinRTT),
		zap.Duration("avg_rtt", stats.AvgRTT),
		zap.Duration("max_rtt", stats.MaxRTT))
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	_ = j.log.Sync()
	return j.rot.Close()
}
