package keeper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lazypower/hearth/internal/cloud"
	"github.com/lazypower/hearth/internal/offline"
)

// Care intensities mirror the two hardware buttons of the original
// pocket device. Degraded chats still feed the soul, just less.
const (
	loveIntensity   = 1.5
	pokeIntensity   = 0.5
	offlineChatCare = 0.5
	quotaChatCare   = 0.3
)

// Interaction is what the owner sees after touching the soul.
type Interaction struct {
	Reply      string
	Expression string
	Agent      string
	E          float64
	State      string
	Offline    bool
}

// Care handles a love or poke press. The soul is fed first; the cloud
// hears about it afterwards and its answer changes nothing here.
func (k *Keeper) Care(kind string) (*Interaction, error) {
	var intensity float64
	var reply string
	switch kind {
	case "love":
		intensity, reply = loveIntensity, offline.LoveReply()
	case "poke":
		intensity, reply = pokeIntensity, offline.PokeReply()
	default:
		return nil, fmt.Errorf("unknown care kind %q", kind)
	}

	before := k.Soul.E()
	k.Soul.ApplyCare(intensity)
	k.recordEvent(kind, intensity, before)

	if k.Cloud.Configured() {
		go func() {
			if err := k.Cloud.Care(context.Background(), kind, intensity, k.Soul.E()); err != nil {
				log.Printf("keeper: cloud care: %v", err)
			}
		}()
	}

	return &Interaction{
		Reply:      reply,
		Expression: k.Soul.Expression(),
		Agent:      k.AgentName(),
		E:          k.Soul.E(),
		State:      k.Soul.State().String(),
	}, nil
}

// Chat runs one exchange through the ladder: cloud first, fallback
// when it can't answer. Exchanges the fallback had to handle alone are
// queued for review at the next sync.
func (k *Keeper) Chat(ctx context.Context, message string) (*Interaction, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("empty message")
	}

	agent := k.AgentName()

	res, err := k.Cloud.Chat(ctx, message, k.Soul.E(), k.Soul.State().String(), agent)
	if err == nil {
		before := k.Soul.E()
		k.Soul.ApplyCare(res.CareValue)
		k.Soul.RecordChat()
		k.recordEvent("chat", res.CareValue, before)
		k.logChat(agent, message, res.Text, res.Expression, false)
		return &Interaction{
			Reply:      res.Text,
			Expression: res.Expression,
			Agent:      agent,
			E:          k.Soul.E(),
			State:      k.Soul.State().String(),
		}, nil
	}

	out := &Interaction{Agent: agent, Offline: true}
	switch {
	case errors.Is(err, cloud.ErrAuthRevoked):
		// Pairing problem, not a presence problem. No care either way.
		out.Reply = offline.AuthReply()
	case errors.Is(err, cloud.ErrQuotaExceeded):
		before := k.Soul.E()
		k.Soul.ApplyCare(quotaChatCare)
		k.recordEvent("chat", quotaChatCare, before)
		out.Reply = offline.QuotaReply()
	default:
		before := k.Soul.E()
		k.Soul.ApplyCare(offlineChatCare)
		k.recordEvent("chat", offlineChatCare, before)
		out.Reply = offline.ChatReply(message, k.Soul.State())
		k.Queue.Add(offline.Entry{
			Input:   message,
			Output:  out.Reply,
			E:       k.Soul.E(),
			State:   k.Soul.State().String(),
			Quality: offline.AssessQuality(message),
		})
	}

	out.Expression = k.Soul.Expression()
	out.E = k.Soul.E()
	out.State = k.Soul.State().String()
	k.logChat(agent, message, out.Reply, out.Expression, true)
	return out, nil
}
