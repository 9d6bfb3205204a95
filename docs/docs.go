// Package docs expone la descripción OpenAPI de la API (Swagger 2.0).
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos registrados en swag.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ricazo POS API",
	Description:      "Motor de caja de padaria: turnos, cuentas, cobro e inventario por unidad.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// ReadDoc documento registrado, listo para servir.
func ReadDoc() string {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		return "{}"
	}
	return doc
}
