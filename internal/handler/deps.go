package handler

import (
	"crmchat/internal/app/chat"
	"crmchat/internal/app/directory"
	"crmchat/internal/app/group"
	"crmchat/internal/app/presence"
	"crmchat/internal/configs"
	"crmchat/internal/pkg/metrics"
)

// AppDeps bundles the constructor-injected collaborators shared by all handlers.
type AppDeps struct {
	Config    *configs.AppConfig
	Registry  *presence.Registry
	Router    *chat.Router
	Typing    *chat.TypingRelay
	Groups    *group.Service
	Directory directory.Directory
	Metrics   *metrics.Metrics
}
