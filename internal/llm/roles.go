package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ExpertRole describes one generated expert: a role slug usable in agent
// names and a short expertise description.
type ExpertRole struct {
	Role        string `json:"role"`
	Description string `json:"description"`
}

const maxExpertRoles = 3

const agentGenerationTpl = `You are provided a question. Give me a list of 1 to 3 expert roles that most helpful in solving question. Question: %s. Only give me the answer as a dictionary of roles in the Python programming format with a short description for each role. Strictly follow the answer format below:
Answer: {"[role name 1]": "[description 1]", "[role name 2]": "[description 2]", "[role name 3]": "[description 3]"}`

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateExpertRoles asks the model which expert roles would help solve the
// problem. The expected wire format is a flat object of role name to
// description; an {"experts": [...]} array is accepted as a fallback. A
// response that parses but yields no usable roles degrades to a single
// general expert rather than failing the session.
func (c *Client) GenerateExpertRoles(ctx context.Context, model, problem string) ([]ExpertRole, error) {
	completion, err := c.Generate(ctx, GenerateParams{
		Model:       model,
		Prompt:      fmt.Sprintf(agentGenerationTpl, problem),
		Temperature: DefaultTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating expert roles: %w", err)
	}
	return parseExpertRoles(ParseModelJSON(completion.Content)), nil
}

func parseExpertRoles(parsed map[string]interface{}) []ExpertRole {
	var roles []ExpertRole

	if items, ok := parsed["experts"].([]interface{}); ok {
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			role, _ := m["role"].(string)
			description, _ := m["description"].(string)
			if role != "" {
				roles = append(roles, ExpertRole{Role: slugifyRole(role), Description: description})
			}
		}
	} else {
		// Flat role -> description object. Keys are sorted so the same
		// response always yields the same role set.
		keys := make([]string, 0, len(parsed))
		for k := range parsed {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, role := range keys {
			if role == RawResponseKey || role == ParseErrorKey || role == "content" {
				continue
			}
			description, ok := parsed[role].(string)
			if !ok {
				continue
			}
			roles = append(roles, ExpertRole{Role: slugifyRole(role), Description: description})
		}
	}

	if len(roles) == 0 {
		roles = []ExpertRole{{Role: "general_expert", Description: "A general problem-solving expert"}}
	}
	if len(roles) > maxExpertRoles {
		roles = roles[:maxExpertRoles]
	}
	return roles
}

// slugifyRole lowers a model-supplied role name into an agent-name-safe slug.
func slugifyRole(role string) string {
	s := strings.ToLower(strings.TrimSpace(role))
	s = nonSlugRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "expert"
	}
	return s
}
