//go:generate swag init -g docs.go -o ../../docs --parseDependency --parseInternal --dir .,../../internal/httpapi

package main

// @title sniply_inject admin API
// @version 1.0
// @description Manage snippets and header/footer code injected into proxied pages.
// @BasePath /_sniply/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Admin token, also accepted as Authorization: Bearer
