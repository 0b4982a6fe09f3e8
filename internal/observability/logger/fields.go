package logger

import (
	"time"

	"go.uber.org/zap"
)

// Typed field constructors so call sites agree on key names.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func Provider(v string) zap.Field { return zap.String("provider", v) }

// Email logs the user email. Use sparingly outside of the login flow.
func Email(v string) zap.Field { return zap.String("email", v) }

func UserID(v int64) zap.Field { return zap.Int64("user_id", v) }

func Route(v string) zap.Field { return zap.String("route", v) }

// Layer marks the architectural layer (controller, service, client).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Op names the operation in Type.Method form.
func Op(v string) zap.Field { return zap.String("op", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }
