package models

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatUser      ChatRole = "user"
	ChatAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the conversation. Assistant turns arrive as
// the JSON of their blocks.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest is the body of POST /api/chat. FleetContext is the digest the
// client already holds; when it is empty and Group is set the server builds
// one from the live fleet.
type ChatRequest struct {
	Messages     []ChatMessage  `json:"messages"`
	FleetContext map[string]any `json:"fleetContext,omitempty"`
	Group        string         `json:"group,omitempty"`
	Locale       string         `json:"locale"`
}

// ChatBlockType selects how a block is rendered.
type ChatBlockType string

const (
	BlockText        ChatBlockType = "text"
	BlockVehicleCard ChatBlockType = "vehicleCard"
	BlockStatCard    ChatBlockType = "statCard"
	BlockAction      ChatBlockType = "action"
)

// VehicleCard is a vehicle mentioned in an answer.
type VehicleCard struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	SPZ      string  `json:"spz"`
	Odometer float64 `json:"odometer"`
	Speed    float64 `json:"speed"`
	IsActive bool    `json:"isActive"`
}

// StatCard is a labelled figure. Value is a number or a short string.
type StatCard struct {
	Label       string `json:"label"`
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
}

// ChatBlock is one piece of an assistant answer. Only the fields of its
// Type are set.
type ChatBlock struct {
	Type     ChatBlockType `json:"type"`
	Content  string        `json:"content,omitempty"`
	Vehicles []VehicleCard `json:"vehicles,omitempty"`
	Stats    []StatCard    `json:"stats,omitempty"`
	Label    string        `json:"label,omitempty"`
	Href     string        `json:"href,omitempty"`
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	Blocks []ChatBlock `json:"blocks"`
}
