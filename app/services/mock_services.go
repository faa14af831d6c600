package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// MockDiscord is an in-memory stand-in for the Discord-backed services. It
// implements MemberDirectory, MemberActions, Messenger and PermissionOracle
// and is safe for concurrent use.
type MockDiscord struct {
	mu sync.Mutex

	// memberRoles maps "guildID/memberID" to the member's role IDs.
	memberRoles map[string][]string
	// knownRoles maps guildID to the role IDs that exist there.
	knownRoles map[string][]string
	kicked     map[string][]string

	messages      map[string][]string
	prompts       map[string][]CampaignPrompt
	deleted       map[string][]string
	nextMessageID atomic.Int64

	GrantErr       error
	RevokeErr      error
	KickErr        error
	PostMessageErr error
	PostPromptErr  error
	DeleteErr      error
	RoleCheck      RoleCheckResult
	ChannelCheck   ChannelCheckResult

	GrantCalls  atomic.Int64
	RevokeCalls atomic.Int64
	KickCalls   atomic.Int64
}

// NewMockDiscord builds an empty mock with all permission checks passing.
func NewMockDiscord() *MockDiscord {
	return &MockDiscord{
		memberRoles:  make(map[string][]string),
		knownRoles:   make(map[string][]string),
		kicked:       make(map[string][]string),
		messages:     make(map[string][]string),
		prompts:      make(map[string][]CampaignPrompt),
		deleted:      make(map[string][]string),
		RoleCheck:    RoleCheckResult{CanManage: true},
		ChannelCheck: ChannelCheckResult{CanUse: true},
	}
}

func memberKey(guildID, memberID string) string {
	return guildID + "/" + memberID
}

// AddRole registers a role as existing in the guild.
func (m *MockDiscord) AddRole(guildID, roleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.knownRoles[guildID], roleID) {
		m.knownRoles[guildID] = append(m.knownRoles[guildID], roleID)
	}
}

// RemoveRole deletes a role from the guild, simulating a moderator removing
// it mid-campaign.
func (m *MockDiscord) RemoveRole(guildID, roleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.knownRoles[guildID] = slices.DeleteFunc(m.knownRoles[guildID], func(id string) bool { return id == roleID })
}

// SetMember registers a member with the given roles.
func (m *MockDiscord) SetMember(guildID, memberID string, roleIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberRoles[memberKey(guildID, memberID)] = append([]string(nil), roleIDs...)
	for _, roleID := range roleIDs {
		if !slices.Contains(m.knownRoles[guildID], roleID) {
			m.knownRoles[guildID] = append(m.knownRoles[guildID], roleID)
		}
	}
}

func (m *MockDiscord) RoleMemberIDs(_ context.Context, guildID, roleID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.knownRoles[guildID], roleID) {
		return nil, ErrRoleNotFound
	}
	var ids []string
	prefix := guildID + "/"
	for key, roles := range m.memberRoles {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && slices.Contains(roles, roleID) {
			ids = append(ids, key[len(prefix):])
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MockDiscord) MemberRoleIDs(_ context.Context, guildID, memberID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roles, ok := m.memberRoles[memberKey(guildID, memberID)]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return append([]string(nil), roles...), nil
}

func (m *MockDiscord) GrantRole(_ context.Context, guildID, memberID, roleID string) error {
	m.GrantCalls.Add(1)
	if m.GrantErr != nil {
		return m.GrantErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memberKey(guildID, memberID)
	if _, ok := m.memberRoles[key]; !ok {
		return ErrMemberNotFound
	}
	if !slices.Contains(m.memberRoles[key], roleID) {
		m.memberRoles[key] = append(m.memberRoles[key], roleID)
	}
	return nil
}

func (m *MockDiscord) RevokeRole(_ context.Context, guildID, memberID, roleID string) error {
	m.RevokeCalls.Add(1)
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memberKey(guildID, memberID)
	if _, ok := m.memberRoles[key]; !ok {
		return ErrMemberNotFound
	}
	m.memberRoles[key] = slices.DeleteFunc(m.memberRoles[key], func(id string) bool { return id == roleID })
	return nil
}

func (m *MockDiscord) KickMember(_ context.Context, guildID, memberID, _ string) error {
	m.KickCalls.Add(1)
	if m.KickErr != nil {
		return m.KickErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.memberRoles, memberKey(guildID, memberID))
	m.kicked[guildID] = append(m.kicked[guildID], memberID)
	return nil
}

// Kicked returns the member IDs kicked from a guild, in order.
func (m *MockDiscord) Kicked(guildID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.kicked[guildID]...)
}

// HasRole reports whether the member currently holds the role.
func (m *MockDiscord) HasRole(guildID, memberID, roleID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.memberRoles[memberKey(guildID, memberID)], roleID)
}

func (m *MockDiscord) PostMessage(_ context.Context, channelID, content string) (string, error) {
	if m.PostMessageErr != nil {
		return "", m.PostMessageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[channelID] = append(m.messages[channelID], content)
	return fmt.Sprintf("msg-%d", m.nextMessageID.Add(1)), nil
}

func (m *MockDiscord) PostEmbed(_ context.Context, channelID, description string, _ int) error {
	if m.PostMessageErr != nil {
		return m.PostMessageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[channelID] = append(m.messages[channelID], description)
	return nil
}

func (m *MockDiscord) PostCampaignPrompt(_ context.Context, channelID string, prompt CampaignPrompt) (string, error) {
	if m.PostPromptErr != nil {
		return "", m.PostPromptErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts[channelID] = append(m.prompts[channelID], prompt)
	return fmt.Sprintf("msg-%d", m.nextMessageID.Add(1)), nil
}

func (m *MockDiscord) DeleteMessage(_ context.Context, channelID, messageID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted[channelID] = append(m.deleted[channelID], messageID)
	return nil
}

// MessagesIn returns the message contents posted to a channel, in order.
func (m *MockDiscord) MessagesIn(channelID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages[channelID]...)
}

// PromptsIn returns the campaign prompts posted to a channel.
func (m *MockDiscord) PromptsIn(channelID string) []CampaignPrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CampaignPrompt(nil), m.prompts[channelID]...)
}

// DeletedIn returns the message IDs deleted from a channel.
func (m *MockDiscord) DeletedIn(channelID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted[channelID]...)
}

func (m *MockDiscord) CanManageRole(_ context.Context, _, _ string) (RoleCheckResult, error) {
	return m.RoleCheck, nil
}

func (m *MockDiscord) CanWriteToChannel(_ context.Context, _, _ string) (ChannelCheckResult, error) {
	return m.ChannelCheck, nil
}
