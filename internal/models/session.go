package models

import "time"

// UserMessageKind classifies a parsed user message.
type UserMessageKind string

const (
	UserMessageText         UserMessageKind = "text"
	UserMessageCommand      UserMessageKind = "command"
	UserMessageLocalCommand UserMessageKind = "local-command"
)

// ParsedUserMessage is a user message after command tags were recognised.
// Only the fields relevant to Kind are set.
type ParsedUserMessage struct {
	Kind           UserMessageKind `json:"kind"`
	Content        string          `json:"content,omitempty"`
	CommandName    string          `json:"commandName,omitempty"`
	CommandArgs    string          `json:"commandArgs,omitempty"`
	CommandMessage string          `json:"commandMessage,omitempty"`
	Stdout         string          `json:"stdout,omitempty"`
}

// CostBreakdown splits an estimated cost by token class, in USD.
type CostBreakdown struct {
	Input       float64 `json:"input"`
	Output      float64 `json:"output"`
	CacheWrite  float64 `json:"cacheWrite"`
	CacheRead   float64 `json:"cacheRead"`
	TotalTokens int64   `json:"totalTokens"`
}

// Cost is the estimated spend of a session.
type Cost struct {
	TotalUSD  float64       `json:"totalUsd"`
	Breakdown CostBreakdown `json:"breakdown"`
}

// SessionMeta is the summary computed from a session log.
type SessionMeta struct {
	FirstUserMessage *ParsedUserMessage `json:"firstUserMessage"`
	MessageCount     int                `json:"messageCount"`
	Cost             Cost               `json:"cost"`
}

// Session is one conversation log file.
type Session struct {
	ID             string      `json:"id"`
	ProjectID      string      `json:"projectId"`
	FilePath       string      `json:"-"`
	Meta           SessionMeta `json:"meta"`
	LastModifiedAt *time.Time  `json:"lastModifiedAt,omitempty"`
}

// SessionDetail is a session together with its parsed entries.
type SessionDetail struct {
	Session
	Entries []Entry `json:"-"`
}
