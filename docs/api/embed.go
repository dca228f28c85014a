// Package apidocs 内嵌 OpenAPI 文档，供 /openapi 路由使用
package apidocs

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
