package models

import (
	"encoding/json"
	"fmt"
)

// ContentType discriminates message content blocks.
type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeThinking   ContentType = "thinking"
	ContentTypeToolUse    ContentType = "tool_use"
	ContentTypeToolResult ContentType = "tool_result"
	ContentTypeImage      ContentType = "image"
)

// ContentBlock is one element of a message's content sequence.
type ContentBlock interface {
	BlockType() ContentType
	isContentBlock()
}

var (
	_ ContentBlock = (*TextBlock)(nil)
	_ ContentBlock = (*ThinkingBlock)(nil)
	_ ContentBlock = (*ToolUseBlock)(nil)
	_ ContentBlock = (*ToolResultBlock)(nil)
	_ ContentBlock = (*ImageBlock)(nil)
	_ ContentBlock = (*UnknownBlock)(nil)
)

type TextBlock struct {
	Text string `json:"text"`
}

func (*TextBlock) BlockType() ContentType { return ContentTypeText }
func (*TextBlock) isContentBlock()        {}

type ThinkingBlock struct {
	Thinking  string `json:"thinking"`
	Signature string `json:"signature,omitempty"`
}

func (*ThinkingBlock) BlockType() ContentType { return ContentTypeThinking }
func (*ThinkingBlock) isContentBlock()        {}

// ToolUseBlock is a tool invocation. Input is kept raw so key order survives.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (*ToolUseBlock) BlockType() ContentType { return ContentTypeToolUse }
func (*ToolUseBlock) isContentBlock()        {}

type ToolResultBlock struct {
	ToolUseID string            `json:"tool_use_id"`
	Content   ToolResultContent `json:"content"`
	IsError   bool              `json:"is_error,omitempty"`
}

func (*ToolResultBlock) BlockType() ContentType { return ContentTypeToolResult }
func (*ToolResultBlock) isContentBlock()        {}

// ImageSource is an inline base64 image.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// DataURI returns the source as a data: URI.
func (s ImageSource) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", s.MediaType, s.Data)
}

type ImageBlock struct {
	Source ImageSource `json:"source"`
}

func (*ImageBlock) BlockType() ContentType { return ContentTypeImage }
func (*ImageBlock) isContentBlock()        {}

// UnknownBlock keeps a block of a type this viewer does not recognise.
type UnknownBlock struct {
	RawType string
	Raw     json.RawMessage
}

func (b *UnknownBlock) BlockType() ContentType { return ContentType(b.RawType) }
func (*UnknownBlock) isContentBlock()          {}

// DecodeContentBlock decodes a single content block. A bare JSON string is
// treated as a text block.
func DecodeContentBlock(raw json.RawMessage) (ContentBlock, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &TextBlock{Text: s}, nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode content block: %w", err)
	}

	var block ContentBlock
	switch ContentType(head.Type) {
	case ContentTypeText:
		block = &TextBlock{}
	case ContentTypeThinking:
		block = &ThinkingBlock{}
	case ContentTypeToolUse:
		block = &ToolUseBlock{}
	case ContentTypeToolResult:
		block = &ToolResultBlock{}
	case ContentTypeImage:
		block = &ImageBlock{}
	default:
		return &UnknownBlock{RawType: head.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
	if err := json.Unmarshal(raw, block); err != nil {
		return nil, fmt.Errorf("decode %s block: %w", head.Type, err)
	}
	return block, nil
}

// UserContent is either a plain string or a sequence of content blocks.
type UserContent struct {
	IsString bool
	Text     string
	Blocks   []ContentBlock
}

// NewTextContent returns string content.
func NewTextContent(text string) UserContent {
	return UserContent{IsString: true, Text: text}
}

// NewBlockContent returns block content.
func NewBlockContent(blocks ...ContentBlock) UserContent {
	return UserContent{Blocks: blocks}
}

func (c *UserContent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = UserContent{IsString: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = UserContent{IsString: true, Text: s}
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("content is neither string nor array: %w", err)
	}
	blocks := make([]ContentBlock, 0, len(raws))
	for _, raw := range raws {
		block, err := DecodeContentBlock(raw)
		if err != nil {
			return err
		}
		blocks = append(blocks, block)
	}
	*c = UserContent{Blocks: blocks}
	return nil
}

// ToolResultItem is one element of a structured tool result.
type ToolResultItem interface {
	isToolResultItem()
}

type ToolResultText struct {
	Text string `json:"text"`
}

func (*ToolResultText) isToolResultItem() {}

type ToolResultImage struct {
	Source ImageSource `json:"source"`
}

func (*ToolResultImage) isToolResultItem() {}

// ToolResultContent is either a plain string or a sequence of text and
// image items. Any other item type fails decoding.
type ToolResultContent struct {
	IsString bool
	Text     string
	Items    []ToolResultItem
}

func (c *ToolResultContent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ToolResultContent{IsString: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ToolResultContent{IsString: true, Text: s}
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("tool result content is neither string nor array: %w", err)
	}
	items := make([]ToolResultItem, 0, len(raws))
	for _, raw := range raws {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("decode tool result item: %w", err)
		}
		var item ToolResultItem
		switch head.Type {
		case "text":
			item = &ToolResultText{}
		case "image":
			item = &ToolResultImage{}
		default:
			return fmt.Errorf("unsupported tool result content type %q", head.Type)
		}
		if err := json.Unmarshal(raw, item); err != nil {
			return fmt.Errorf("decode tool result %s item: %w", head.Type, err)
		}
		items = append(items, item)
	}
	*c = ToolResultContent{Items: items}
	return nil
}
