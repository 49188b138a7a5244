// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package events

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/saveeat/internal/recommend"
)

// Topics. Both live under the stream subject "interactions.>".
const (
	TopicInteractionLogged = "interactions.logged"
	TopicPoison            = "interactions.poison"

	streamSubjects = "interactions.>"
)

// Metadata keys set on every interaction message.
const (
	MetadataUserID          = "user_id"
	MetadataInteractionType = "interaction_type"
)

// ErrMissingEventID is returned when an interaction has no event ID.
var ErrMissingEventID = errors.New("interaction has no event ID")

// NewInteractionMessage encodes ev as a watermill message. The message UUID
// is the event ID, which JetStream also uses for deduplication.
func NewInteractionMessage(ev *recommend.LoggedInteraction) (*message.Message, error) {
	if ev == nil || ev.EventID == "" {
		return nil, ErrMissingEventID
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal interaction: %w", err)
	}
	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, ev.EventID)
	msg.Metadata.Set(MetadataUserID, strconv.FormatInt(ev.UserID, 10))
	msg.Metadata.Set(MetadataInteractionType, string(ev.Type))
	return msg, nil
}

// DecodeInteraction decodes a message produced by NewInteractionMessage.
func DecodeInteraction(msg *message.Message) (*recommend.LoggedInteraction, error) {
	var ev recommend.LoggedInteraction
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal interaction: %w", err)
	}
	if ev.EventID == "" {
		ev.EventID = msg.UUID
	}
	if ev.EventID == "" {
		return nil, ErrMissingEventID
	}
	return &ev, nil
}
