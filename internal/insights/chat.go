package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/models"
)

const (
	// MaxChatHistory is how many trailing messages are sent to the model.
	MaxChatHistory = 20
	// MaxChatBlocks caps the blocks of one answer.
	MaxChatBlocks = 8

	maxMessageRunes = 4000
)

// ErrEmptyConversation is returned when there is no user question to answer.
var ErrEmptyConversation = errors.New("conversation has no user message")

// normalizeHistory trims the conversation to known roles and the last
// MaxChatHistory turns. The last turn must come from the user.
func normalizeHistory(messages []models.ChatMessage) ([]models.ChatMessage, error) {
	out := make([]models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if r := []rune(content); len(r) > maxMessageRunes {
			content = string(r[:maxMessageRunes])
		}
		switch m.Role {
		case models.ChatUser, models.ChatAssistant:
			out = append(out, models.ChatMessage{Role: m.Role, Content: content})
		}
	}
	if len(out) == 0 || out[len(out)-1].Role != models.ChatUser {
		return nil, ErrEmptyConversation
	}
	if len(out) > MaxChatHistory {
		out = out[len(out)-MaxChatHistory:]
	}
	return out, nil
}

// BuildChatPrompt renders the conversation and fleet context for the model.
func BuildChatPrompt(messages []models.ChatMessage, fleetContext map[string]any, locale string) (string, error) {
	payload, err := json.MarshalIndent(fleetContext, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode fleet context: %w", err)
	}
	lang, ok := localeNames[strings.ToLower(locale)]
	if !ok {
		lang = localeNames["en"]
	}

	var sb strings.Builder
	sb.WriteString("You are a fleet management assistant. Answer the last user message using only the fleet data below. ")
	sb.WriteString("If the data does not contain the answer, say so.\n\n")
	fmt.Fprintf(&sb, "Reply with a JSON array of at most %d blocks. Allowed blocks:\n", MaxChatBlocks)
	sb.WriteString(`{"type":"text","content":"..."}` + "\n")
	sb.WriteString(`{"type":"vehicleCard","vehicles":[{"code":"...","name":"...","spz":"...","odometer":0,"speed":0,"isActive":true}]}` + "\n")
	sb.WriteString(`{"type":"statCard","stats":[{"label":"...","value":0,"description":"..."}]}` + "\n")
	sb.WriteString(`{"type":"action","label":"...","href":"/health/{vehicleCode}"}` + "\n")
	fmt.Fprintf(&sb, "Write all text in %s. Return only the JSON array.\n\n", lang)
	sb.WriteString("Fleet data:\n")
	sb.Write(payload)
	sb.WriteString("\n\nConversation:\n")
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String(), nil
}

type rawBlock struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Vehicles []struct {
		Code     string        `json:"code"`
		Name     string        `json:"name"`
		SPZ      string        `json:"spz"`
		Odometer models.Number `json:"odometer"`
		Speed    models.Number `json:"speed"`
		IsActive bool          `json:"isActive"`
	} `json:"vehicles"`
	Stats []struct {
		Label       string `json:"label"`
		Value       any    `json:"value"`
		Description string `json:"description"`
	} `json:"stats"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

func (r rawBlock) block() (models.ChatBlock, bool) {
	switch models.ChatBlockType(r.Type) {
	case models.BlockText:
		content := strings.TrimSpace(r.Content)
		return models.ChatBlock{Type: models.BlockText, Content: content}, content != ""
	case models.BlockVehicleCard:
		b := models.ChatBlock{Type: models.BlockVehicleCard}
		for _, v := range r.Vehicles {
			if strings.TrimSpace(v.Code) == "" {
				continue
			}
			b.Vehicles = append(b.Vehicles, models.VehicleCard{
				Code:     strings.TrimSpace(v.Code),
				Name:     strings.TrimSpace(v.Name),
				SPZ:      strings.TrimSpace(v.SPZ),
				Odometer: v.Odometer.Float(),
				Speed:    v.Speed.Float(),
				IsActive: v.IsActive,
			})
		}
		return b, len(b.Vehicles) > 0
	case models.BlockStatCard:
		b := models.ChatBlock{Type: models.BlockStatCard}
		for _, s := range r.Stats {
			label := strings.TrimSpace(s.Label)
			if label == "" {
				continue
			}
			var value any
			switch v := s.Value.(type) {
			case float64:
				value = models.Number(v).Float()
			case string:
				value = strings.TrimSpace(v)
			default:
				continue
			}
			b.Stats = append(b.Stats, models.StatCard{Label: label, Value: value, Description: strings.TrimSpace(s.Description)})
		}
		return b, len(b.Stats) > 0
	case models.BlockAction:
		label, href := strings.TrimSpace(r.Label), strings.TrimSpace(r.Href)
		// Only in-app links.
		ok := label != "" && strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//")
		return models.ChatBlock{Type: models.BlockAction, Label: label, Href: href}, ok
	default:
		return models.ChatBlock{}, false
	}
}

// ParseChatBlocks extracts answer blocks from model output. Prose that does
// not hold a JSON array is returned as a single text block. Unknown or incomplete
// blocks are dropped.
func ParseChatBlocks(text string) ([]models.ChatBlock, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return []models.ChatBlock{{Type: models.BlockText, Content: text}}, nil
	}

	var raw []rawBlock
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		if !strings.HasPrefix(text, "[") && !strings.HasPrefix(text, "```") {
			return []models.ChatBlock{{Type: models.BlockText, Content: text}}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	out := make([]models.ChatBlock, 0, len(raw))
	for _, r := range raw {
		if b, ok := r.block(); ok {
			out = append(out, b)
		}
		if len(out) == MaxChatBlocks {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable blocks", ErrBadResponse)
	}
	return out, nil
}

// Chat answers the last user message of a conversation. Answers are not
// cached.
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if s == nil || s.Generator == nil {
		return nil, ErrNotConfigured
	}
	history, err := normalizeHistory(req.Messages)
	if err != nil {
		return nil, err
	}
	if req.Locale == "" {
		req.Locale = "en"
	}
	fleetContext := req.FleetContext
	if fleetContext == nil {
		fleetContext = map[string]any{}
	}

	prompt, err := BuildChatPrompt(history, fleetContext, req.Locale)
	if err != nil {
		return nil, err
	}
	text, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate chat answer: %w", err)
	}
	blocks, err := ParseChatBlocks(text)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"turns":  len(history),
		"blocks": len(blocks),
		"locale": req.Locale,
	}).Info("Answered chat message")
	return &models.ChatResponse{Blocks: blocks}, nil
}
