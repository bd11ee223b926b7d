package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/botdag/catalog"
)

func (s *Server) listComponentTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"components": s.catalog.Types(),
		"actions":    []string{catalog.ActionsAI},
	})
}

func (s *Server) listComponents(c fiber.Ctx) error {
	comps, ok := s.catalog.List(c.Params("type"))
	if !ok {
		return notFound(c, "Component type not found")
	}
	return c.JSON(comps)
}

func (s *Server) getComponent(c fiber.Ctx) error {
	typ := c.Params("type")
	if _, ok := s.catalog.List(typ); !ok {
		return notFound(c, "Component type not found")
	}
	comp, ok := s.catalog.Get(typ, c.Params("id"))
	if !ok {
		return notFound(c, "Component not found")
	}
	return c.JSON(comp)
}
