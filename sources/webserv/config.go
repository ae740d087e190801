package webserv

import (
	"steinberg/sources/configuration"
	"steinberg/sources/platform"
)

type WebservConfig struct {
	Port          int
	AllowedOrigin string
}

func NewWebservConfig(config *configuration.Config) *WebservConfig {
	return &WebservConfig{
		Port:          config.Service.Port,
		AllowedOrigin: platform.Get("WEBSERV_ALLOWED_ORIGIN", "*"),
	}
}
