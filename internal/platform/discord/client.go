// Package discord implements the platform boundary on top of the
// Discord gateway and REST API.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/platform"
)

// RoomNotifier receives membership-change events. Satisfied by
// reconcile.Coordinator.
type RoomNotifier interface {
	Notify(room domain.Room)
}

// Client wraps one gateway session. It satisfies platform.RoomLister,
// platform.MemberFetcher, platform.Mover and platform.Messenger.
type Client struct {
	s *discordgo.Session
}

// avatarSize matches the fixed rendition the panel displays.
const avatarSize = "512"

func New(token string) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers
	return &Client{s: s}, nil
}

// Connect opens the gateway and wires voice-state events to the
// notifier. ready fires once the session is identified; the caller
// runs the startup sweep from it.
func (c *Client) Connect(notifier RoomNotifier, ready func()) error {
	c.s.AddHandlerOnce(func(s *discordgo.Session, e *discordgo.Ready) {
		log.Info().Str("module", "discord").Str("user", e.User.Username).Msg("gateway ready")
		ready()
	})
	c.s.AddHandler(func(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
		c.onVoiceState(notifier, e)
	})
	if err := c.s.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.s.Close()
}

// onVoiceState notifies every room the transition touched: a move
// between rooms changes membership of both the old and the new one.
func (c *Client) onVoiceState(notifier RoomNotifier, e *discordgo.VoiceStateUpdate) {
	channels := make([]string, 0, 2)
	if e.ChannelID != "" {
		channels = append(channels, e.ChannelID)
	}
	if e.BeforeUpdate != nil && e.BeforeUpdate.ChannelID != "" && e.BeforeUpdate.ChannelID != e.ChannelID {
		channels = append(channels, e.BeforeUpdate.ChannelID)
	}
	for _, ch := range channels {
		room, err := c.room(e.GuildID, ch)
		if err != nil {
			log.Warn().Err(err).Str("module", "discord").Str("channel", ch).Msg("cannot resolve room for voice event")
			continue
		}
		notifier.Notify(room)
	}
}

func (c *Client) room(guildID, channelID string) (domain.Room, error) {
	g, err := c.guild(guildID)
	if err != nil {
		return domain.Room{}, err
	}
	ch, err := c.s.State.Channel(channelID)
	if err != nil {
		if ch, err = c.s.Channel(channelID); err != nil {
			return domain.Room{}, fmt.Errorf("channel %s: %w", channelID, err)
		}
	}
	return domain.Room{
		ID:        domain.RoomID(ch.ID),
		Name:      domain.RoomName(ch.Name),
		GroupID:   domain.GroupID(g.ID),
		GroupName: domain.GroupName(g.Name),
	}, nil
}

func (c *Client) guild(guildID string) (*discordgo.Guild, error) {
	if g, err := c.s.State.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := c.s.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s: %w", guildID, err)
	}
	return g, nil
}

func (c *Client) Groups(ctx context.Context) ([]platform.Group, error) {
	out := make([]platform.Group, 0, len(c.s.State.Guilds))
	for _, g := range c.s.State.Guilds {
		out = append(out, platform.Group{
			ID:   domain.GroupID(g.ID),
			Name: domain.GroupName(g.Name),
		})
	}
	return out, nil
}

func (c *Client) VoiceRooms(ctx context.Context, group domain.GroupID) ([]domain.Room, error) {
	g, err := c.guild(string(group))
	if err != nil {
		return nil, err
	}
	channels := g.Channels
	if len(channels) == 0 {
		if channels, err = c.s.GuildChannels(string(group), discordgo.WithContext(ctx)); err != nil {
			return nil, fmt.Errorf("list channels: %w", err)
		}
	}
	out := make([]domain.Room, 0, len(channels))
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildVoice && ch.Type != discordgo.ChannelTypeGuildStageVoice {
			continue
		}
		out = append(out, domain.Room{
			ID:        domain.RoomID(ch.ID),
			Name:      domain.RoomName(ch.Name),
			GroupID:   domain.GroupID(g.ID),
			GroupName: domain.GroupName(g.Name),
		})
	}
	return out, nil
}

// RoomMembers lists everyone whose voice state points at the room.
// Member records come from the gateway state cache with a REST
// fallback for users the cache hasn't seen yet.
func (c *Client) RoomMembers(ctx context.Context, room domain.Room) ([]platform.RawMember, error) {
	g, err := c.guild(string(room.GroupID))
	if err != nil {
		return nil, err
	}
	out := make([]platform.RawMember, 0, len(g.VoiceStates))
	for _, vs := range g.VoiceStates {
		if vs.ChannelID != string(room.ID) {
			continue
		}
		m, err := c.member(ctx, g.ID, vs.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, platform.RawMember{
			UserID:    domain.UserID(m.User.ID),
			Username:  m.User.Username,
			Nick:      m.Nick,
			AvatarURL: m.User.AvatarURL(avatarSize),
			Bot:       m.User.Bot,
		})
	}
	return out, nil
}

func (c *Client) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := c.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	m, err := c.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", userID, err)
	}
	return m, nil
}

func (c *Client) ResolveGroup(ctx context.Context, group domain.GroupID) (platform.Group, error) {
	g, err := c.guild(string(group))
	if err != nil {
		return platform.Group{}, err
	}
	return platform.Group{ID: domain.GroupID(g.ID), Name: domain.GroupName(g.Name)}, nil
}

func (c *Client) VoicePresence(ctx context.Context, group domain.GroupID, user domain.UserID) (domain.RoomID, bool, error) {
	g, err := c.guild(string(group))
	if err != nil {
		return "", false, err
	}
	for _, vs := range g.VoiceStates {
		if vs.UserID == string(user) && vs.ChannelID != "" {
			return domain.RoomID(vs.ChannelID), true, nil
		}
	}
	return "", false, nil
}

func (c *Client) MoveMember(ctx context.Context, group domain.GroupID, user domain.UserID, room domain.RoomID) error {
	channelID := string(room)
	if err := c.s.GuildMemberMove(string(group), string(user), &channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("move member: %w", err)
	}
	return nil
}

func (c *Client) DirectMessage(ctx context.Context, user domain.UserID, content string) error {
	ch, err := c.s.UserChannelCreate(string(user), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}
	if _, err := c.s.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}
