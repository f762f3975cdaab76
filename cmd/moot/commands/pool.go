package commands

import (
	"fmt"
	"sort"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/internal/config"
	"github.com/dyluth/moot/internal/llm"
)

// defaultRoles is the panel used when moot.yml configures no agents.
var defaultRoles = []agent.Role{
	agent.RolePlanner,
	agent.RoleDecider,
	agent.RoleCritic,
	agent.RoleCleaner,
	agent.RoleConflictResolver,
}

// buildPool assembles the agent roster for one session: the configured
// agents (or the default five-role panel when moot.yml names none), plus any
// generated experts. Models are assigned round-robin from the configured
// roster unless an agent pins its own.
func buildPool(cfg *config.MootConfig, gen agent.Generator, experts []llm.ExpertRole) (*agent.Pool, error) {
	roster, err := llm.NewModelRoster(cfg.Model.Models)
	if err != nil {
		return nil, err
	}
	temperature := cfg.Temperature()

	var actors []agent.Actor
	if len(cfg.Agents) == 0 {
		for _, role := range defaultRoles {
			actor, err := newActor(string(role), string(role), "", roster.Next(), gen, temperature)
			if err != nil {
				return nil, err
			}
			actors = append(actors, actor)
		}
	} else {
		// Map iteration order is random; sort so model assignment is stable
		// across runs.
		names := make([]string, 0, len(cfg.Agents))
		for name := range cfg.Agents {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			spec := cfg.Agents[name]
			model := spec.Model
			if model == "" {
				model = roster.Next()
			}
			actor, err := newActor(name, spec.Role, spec.Description, model, gen, temperature)
			if err != nil {
				return nil, err
			}
			actors = append(actors, actor)
		}
	}

	for _, role := range experts {
		actors = append(actors, agent.NewExpert(role.Role, role.Description, roster.Next(), gen, temperature))
	}

	return agent.NewPool(actors...)
}

func newActor(name, role, description, model string, gen agent.Generator, temperature float64) (agent.Actor, error) {
	switch agent.Role(role) {
	case agent.RolePlanner:
		return agent.NewPlanner(name, model, gen, temperature), nil
	case agent.RoleDecider:
		return agent.NewDecider(name, model, gen, temperature), nil
	case agent.RoleCritic:
		return agent.NewCritic(name, model, gen, temperature), nil
	case agent.RoleCleaner:
		return agent.NewCleaner(name, model, gen, temperature), nil
	case agent.RoleConflictResolver:
		return agent.NewConflictResolver(name, model, gen, temperature), nil
	case agent.RoleExpert:
		// The map key doubles as the expertise slug; the agent name becomes
		// expert_<key>.
		return agent.NewExpert(name, description, model, gen, temperature), nil
	default:
		return nil, fmt.Errorf("unknown agent role '%s' for agent '%s'", role, name)
	}
}
