package handler

import (
	"taskhub/internal/app/realtime"
	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
	"taskhub/internal/configs"
	"taskhub/internal/pkg/auth/jwt"
)

// AppDeps carries everything the HTTP handlers need.
type AppDeps struct {
	Config   *configs.AppConfig
	Verifier *jwt.Verifier
	Users    *user.Service
	Tasks    *task.Service
	Hub      *realtime.Hub
}
