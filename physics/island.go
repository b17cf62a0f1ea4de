package physics

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/joint"
	"github.com/rigid2d/engine/settings"
)

// Island is a connected component of awake dynamic bodies together with
// every contact and joint edge that links them. Constraints are solved in
// isolation per island so that one island settling to rest never blocks
// another from being processed, and so sleeping can be decided per island
// rather than for the world as a whole.
type Island struct {
	Bodies   []*body.Body
	Contacts []*ContactConstraint
	Joints   []joint.Joint
}

type islandEdge struct {
	other   *body.Body
	contact *ContactConstraint
	joint   joint.Joint
}

// BuildIslands partitions the given awake dynamic bodies into connected
// components using the supplied contacts and joints as graph edges. A
// static or otherwise non-dynamic body terminates traversal (it appears in
// whichever islands touch it without merging them) but contributes no
// edges of its own.
func BuildIslands(bodies []*body.Body, contacts []*ContactConstraint, joints []joint.Joint) []*Island {

	adjacency := make(map[*body.Body][]islandEdge)
	addEdge := func(owner, other *body.Body, c *ContactConstraint, j joint.Joint) {
		if owner.IsDynamic() {
			adjacency[owner] = append(adjacency[owner], islandEdge{other: other, contact: c, joint: j})
		}
	}

	for _, c := range contacts {
		addEdge(c.BodyA, c.BodyB, c, nil)
		addEdge(c.BodyB, c.BodyA, c, nil)
	}
	for _, j := range joints {
		addEdge(j.BodyA(), j.BodyB(), nil, j)
		addEdge(j.BodyB(), j.BodyA(), nil, j)
	}

	visited := make(map[*body.Body]bool)
	seenContact := make(map[*ContactConstraint]bool)
	seenJoint := make(map[joint.Joint]bool)

	var islands []*Island

	for _, b := range bodies {
		if !b.IsDynamic() || b.IsAtRest() || visited[b] {
			continue
		}

		island := &Island{}
		stack := []*body.Body{b}

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			island.Bodies = append(island.Bodies, cur)

			for _, e := range adjacency[cur] {
				if e.contact != nil && !seenContact[e.contact] {
					seenContact[e.contact] = true
					island.Contacts = append(island.Contacts, e.contact)
				}
				if e.joint != nil && !seenJoint[e.joint] {
					seenJoint[e.joint] = true
					island.Joints = append(island.Joints, e.joint)
				}
				if e.other.IsDynamic() && !visited[e.other] {
					stack = append(stack, e.other)
				}
			}
		}

		islands = append(islands, island)
	}

	return islands
}

// IslandSolver runs the velocity and position solve for a single island:
// warm start, velocity iterations (contacts and joints interleaved in the
// order they appear), position integration, then position iterations.
type IslandSolver struct {
	contacts *ContactSolver
}

// NewIslandSolver returns an island solver using the given contact solver.
func NewIslandSolver(contacts *ContactSolver) *IslandSolver {
	return &IslandSolver{contacts: contacts}
}

// Solve runs one full step's constraint solve for a single island: joint
// and contact initialization and warm starting, the requested number of
// velocity iterations, position integration for every body in the island,
// and the requested number of position iterations. It returns true if
// every constraint in the island is within its configured tolerance.
// If any joint reports an InvalidState error during initialization, the
// island is left untouched (no warm start, no integration) and the error
// is returned so the step can be aborted without corrupting state.
func (s *IslandSolver) Solve(island *Island, step TimeStep, cfg *settings.Settings) (bool, error) {

	s.contacts.InitializeContacts(island.Contacts, cfg)
	for _, j := range island.Joints {
		if err := j.InitializeConstraints(step.Dt, step.InvDt, cfg); err != nil {
			return false, err
		}
	}

	s.contacts.WarmStart(island.Contacts)
	for _, j := range island.Joints {
		j.WarmStart()
	}

	for i := 0; i < cfg.VelocityIterations; i++ {
		for _, j := range island.Joints {
			j.SolveVelocityConstraints(step.Dt, step.InvDt)
		}
		s.contacts.SolveVelocity(island.Contacts, 1)
	}

	for _, b := range island.Bodies {
		b.IntegratePosition(step.Dt, cfg.MaxTranslation, cfg.MaxRotation)
	}

	solved := true
	for i := 0; i < cfg.PositionIterations; i++ {
		jointsSolved := true
		for _, j := range island.Joints {
			if !j.SolvePositionConstraints(cfg) {
				jointsSolved = false
			}
		}
		contactsSolved := s.contacts.SolvePosition(island.Contacts, 1, cfg)
		if jointsSolved && contactsSolved {
			solved = true
			break
		}
		solved = false
	}

	return solved, nil
}
