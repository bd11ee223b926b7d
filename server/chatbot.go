package server

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/botdag"
)

type createChatBotRequest struct {
	Name        string      `json:"name" validate:"required,max=80"`
	Description string      `json:"description"`
	Engine      string      `json:"engine" validate:"required"`
	DAG         *botdag.DAG `json:"dag"`
}

type updateChatBotRequest struct {
	Name        string      `json:"name" validate:"max=80"`
	Description string      `json:"description"`
	DAG         *botdag.DAG `json:"dag"`
	UpdateKeys  []string    `json:"update_keys"`
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

func (s *Server) createChatBot(c fiber.Ctx) error {
	var req createChatBotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(c, validationDetail(err))
	}
	if !botdag.ValidEngine(req.Engine) {
		return badRequest(c, fmt.Sprintf("Invalid engine should be one of [%s %s]", botdag.EngineFury, botdag.EngineLangflow))
	}
	if req.Engine == botdag.EngineFury && req.DAG != nil {
		if err := botdag.ValidateDAG(req.DAG); err != nil {
			return unprocessable(c, err.Error())
		}
	}

	bot, err := s.store.CreateChatBot(c.Context(), &botdag.ChatBot{
		Name:        req.Name,
		Description: req.Description,
		Engine:      req.Engine,
		DAG:         req.DAG,
		CreatedBy:   currentUser(c),
	})
	if err != nil {
		return s.internalError(c, err)
	}
	s.log.Info().Str("chatbot", bot.ID).Str("user", bot.CreatedBy).Msg("chatbot created")
	return c.Status(fiber.StatusCreated).JSON(bot)
}

func (s *Server) getChatBot(c fiber.Ctx) error {
	bot, err := s.store.GetChatBot(c.Context(), c.Params("id"))
	if err != nil {
		return s.internalError(c, err)
	}
	if bot == nil {
		return notFound(c, "ChatBot not found")
	}
	return c.JSON(bot)
}

func (s *Server) updateChatBot(c fiber.Ctx) error {
	var req updateChatBotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(c, validationDetail(err))
	}
	keys, err := uniqueKeys(req.UpdateKeys)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if contains(keys, botdag.KeyName) && req.Name == "" {
		return badRequest(c, "Name not specified")
	}

	id := c.Params("id")
	existing, err := s.store.GetChatBot(c.Context(), id)
	if err != nil {
		return s.internalError(c, err)
	}
	if existing == nil {
		return notFound(c, "ChatBot not found")
	}
	if contains(keys, botdag.KeyDAG) && existing.Engine == botdag.EngineFury {
		if err := botdag.ValidateDAG(req.DAG); err != nil {
			return unprocessable(c, err.Error())
		}
	}

	bot, err := s.store.UpdateChatBot(c.Context(), &botdag.ChatBot{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		DAG:         req.DAG,
	}, keys)
	if errors.Is(err, botdag.ErrChatBotNotFound) {
		return notFound(c, "ChatBot not found")
	}
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(bot)
}

func (s *Server) deleteChatBot(c fiber.Ctx) error {
	id := c.Params("id")
	err := s.store.DeleteChatBot(c.Context(), id)
	if errors.Is(err, botdag.ErrChatBotNotFound) {
		return notFound(c, "ChatBot not found")
	}
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"msg": fmt.Sprintf("ChatBot '%s' deleted successfully", id)})
}

func (s *Server) listChatBots(c fiber.Ctx) error {
	skip, err := intQuery(c, "skip", 0)
	if err != nil || skip < 0 {
		return badRequest(c, "Invalid skip")
	}
	limit, err := intQuery(c, "limit", defaultLimit)
	if err != nil || limit <= 0 {
		return badRequest(c, "Invalid limit")
	}
	limit = min(limit, maxLimit)

	bots, err := s.store.ListChatBots(c.Context(), currentUser(c), skip, limit)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"chatbots": bots})
}

// uniqueKeys dedupes update_keys and rejects anything outside name, description and dag.
func uniqueKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, errors.New("No keys to update")
	}
	seen := map[string]struct{}{}
	var invalid []string
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if !botdag.ValidUpdateKey(k) {
			invalid = append(invalid, k)
			continue
		}
		out = append(out, k)
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, fmt.Errorf("Invalid keys [%s]", strings.Join(invalid, " "))
	}
	return out, nil
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " not specified"
	case "email":
		return "Invalid email"
	}
	return fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag())
}

func intQuery(c fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
