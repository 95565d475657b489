package handler

import (
	"syncroom/internal/app/hub"
	"syncroom/internal/app/media"
	"syncroom/internal/configs"
)

type AppDeps struct {
	Hub    *hub.Hub
	Media  *media.Service
	Config *configs.AppConfig
}
