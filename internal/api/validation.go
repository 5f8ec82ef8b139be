package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/aggregate"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

const defaultWindowDays = 7

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validateAggregateRequest checks the aggregate body and fills window
// defaults: today through a week out.
func validateAggregateRequest(req AggregateRequest) (aggregate.Request, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return aggregate.Request{}, ValidationError{Field: "location", Message: "location is required"}
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	window := models.TimeRange{
		Start: now,
		End:   now.AddDate(0, 0, defaultWindowDays),
	}

	if req.Start != "" {
		start, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			return aggregate.Request{}, ValidationError{Field: "start", Message: "must be YYYY-MM-DD"}
		}
		window.Start = start
	}
	if req.End != "" {
		end, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			return aggregate.Request{}, ValidationError{Field: "end", Message: "must be YYYY-MM-DD"}
		}
		window.End = end
	}

	if window.End.Before(window.Start) {
		return aggregate.Request{}, ValidationError{Field: "end", Message: "end must not precede start"}
	}

	interests := make([]string, 0, len(req.Interests))
	for _, interest := range req.Interests {
		if trimmed := strings.TrimSpace(interest); trimmed != "" {
			interests = append(interests, trimmed)
		}
	}

	return aggregate.Request{
		Location:  location,
		Window:    window,
		Interests: interests,
	}, nil
}

// validateChatRequest checks the chat body and maps it to a conversation.
func validateChatRequest(req ChatRequest) (models.Conversation, models.ProviderID, error) {
	if len(req.Messages) == 0 {
		return models.Conversation{}, "", ValidationError{Field: "messages", Message: "at least one message is required"}
	}

	for i, msg := range req.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			return models.Conversation{}, "", ValidationError{
				Field:   fmt.Sprintf("messages[%d].content", i),
				Message: "content must not be empty",
			}
		}
		switch msg.Role {
		case "user", "assistant":
		default:
			return models.Conversation{}, "", ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "role must be 'user' or 'assistant'",
			}
		}
	}

	if req.Messages[len(req.Messages)-1].Role != "user" {
		return models.Conversation{}, "", ValidationError{Field: "messages", Message: "last message must be from the user"}
	}

	var force models.ProviderID
	if req.ForceProvider != "" {
		force = models.ProviderID(req.ForceProvider)
		if !force.Valid() {
			return models.Conversation{}, "", ValidationError{Field: "force_provider", Message: "must be 'reasoning' or 'search_grounded'"}
		}
	}

	return models.Conversation{
		History: req.Messages,
		Profile: req.Profile,
	}, force, nil
}
