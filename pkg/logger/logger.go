package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controla el destino y el nivel del log del proceso.
type Config struct {
	Env   string // "development" imprime consola legible; el resto, JSON por línea
	Level string // trace, debug, info, warn, error; vacío o desconocido cae en info
}

// Logger envuelve zerolog. Las capas de aplicación lo reciben inyectado en
// lugar de tocar el logger global, lo que permite silenciarlo en pruebas.
type Logger struct {
	zl zerolog.Logger
}

// New arma el logger del proceso. Fuera de development la salida es JSON,
// apta para recolectores. El logger global de zerolog queda apuntando al
// mismo destino para las librerías que escriben por esa vía.
func New(cfg Config) *Logger {
	out := io.Writer(os.Stdout)
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With abre un sublogger con campos fijos (por ejemplo el módulo o la empresa).
func (l *Logger) With() zerolog.Context { return l.zl.With() }

// Zerolog expone el logger interno cuando se necesita la API completa.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }
