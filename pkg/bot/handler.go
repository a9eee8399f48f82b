package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"twinhost/pkg/router"
	"twinhost/pkg/world"
)

// Handler turns prefixed chat messages into router commands, e.g.
// "!twin import @alex" or "!twin message maya hello".
type Handler struct {
	router *router.Router
	prefix string
	botID  string
}

func NewHandler(r *router.Router, prefix string) *Handler {
	if prefix == "" {
		prefix = "!twin"
	}
	return &Handler{
		router: r,
		prefix: prefix,
	}
}

// SetBotID tells the handler which user to ignore (itself).
func (h *Handler) SetBotID(id string) {
	h.botID = id
}

func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.HandleMessage(&DiscordSession{s}, m)
}

func (h *Handler) HandleMessage(s Session, m *discordgo.MessageCreate) {
	// Ignore own messages
	if m.Author != nil && m.Author.ID == h.botID {
		return
	}

	content := strings.TrimSpace(m.Content)
	rest, ok := strings.CutPrefix(content, h.prefix)
	if !ok {
		return
	}
	if rest != "" && !strings.HasPrefix(rest, " ") {
		// "!twinsomething" is not our command.
		return
	}

	actor := router.Actor{
		ID: m.ChannelID,
		At: world.Locus{Channel: m.ChannelID},
	}
	h.router.Dispatch(actor, strings.TrimSpace(rest))
}
