package linear

import (
	"encoding/json"
	"strings"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// graphQLErrors keeps the structured entries behind the OperationError so
// callers can tell an entity-not-found answer from a real failure.
type graphQLErrors []graphQLError

func (e graphQLErrors) Error() string {
	messages := make([]string, len(e))
	for i, entry := range e {
		messages[i] = entry.Message
	}
	return strings.Join(messages, "; ")
}

func (e graphQLErrors) entityNotFound() bool {
	for _, entry := range e {
		if entry.Extensions.Code == "ENTITY_NOT_FOUND" || strings.HasPrefix(entry.Message, "Entity not found") {
			return true
		}
	}
	return false
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type idNode struct {
	ID string `json:"id"`
}

type userNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type projectNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Teams       struct {
		Nodes []idNode `json:"nodes"`
	} `json:"teams"`
}

type issueNode struct {
	ID          string  `json:"id"`
	Identifier  string  `json:"identifier"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"createdAt"`
	Team        *idNode `json:"team"`
	State       *idNode `json:"state"`
	Project     *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
	ProjectMilestone *idNode `json:"projectMilestone"`
	Parent           *idNode `json:"parent"`
	Assignee         *idNode `json:"assignee"`
}

type stateNode struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Position float64 `json:"position"`
}

type milestoneNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
