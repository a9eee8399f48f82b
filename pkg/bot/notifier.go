package bot

import (
	"bytes"
	"log"

	"github.com/bwmarrin/discordgo"

	"twinhost/pkg/router"
)

// ChannelNotifier delivers router output to the channel the command came
// from. Actor.ID is the channel ID.
type ChannelNotifier struct {
	session Session
}

func NewChannelNotifier(session Session) *ChannelNotifier {
	return &ChannelNotifier{session: session}
}

func (n *ChannelNotifier) Info(actor router.Actor, msg string) {
	if _, err := n.session.ChannelMessageSend(actor.ID, msg); err != nil {
		log.Printf("Error sending notification to %s: %v", actor.ID, err)
	}
}

func (n *ChannelNotifier) Error(actor router.Actor, msg string) {
	if _, err := n.session.ChannelMessageSend(actor.ID, "⚠️ "+msg); err != nil {
		log.Printf("Error sending error notification to %s: %v", actor.ID, err)
	}
}

// Audio posts a voice clip as a file attachment; Discord renders an inline
// player, which stands in for out-of-band playback.
func (n *ChannelNotifier) Audio(actor router.Actor, filename string, clip []byte) {
	_, err := n.session.ChannelMessageSendComplex(actor.ID, &discordgo.MessageSend{
		Files: []*discordgo.File{
			{
				Name:        filename,
				ContentType: "audio/mpeg",
				Reader:      bytes.NewReader(clip),
			},
		},
	})
	if err != nil {
		log.Printf("Error sending audio clip to %s: %v", actor.ID, err)
	}
}
