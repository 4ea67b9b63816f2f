package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
)

// pageParams lee limit/offset con los topes de dto.PageRequest.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p.Limit, p.Offset
}

// requireParam devuelve el parámetro de ruta o responde MISSING_ID.
func requireParam(c *fiber.Ctx, name string) (string, bool) {
	v := c.Params(name)
	if v == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: name + " es requerido"})
		return "", false
	}
	return v, true
}
