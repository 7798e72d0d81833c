package view

import "github.com/vanderheijden86/keymatrix/pkg/scene"

// SetExternalSelection highlights keyword id as selected by the host. The
// highlight is only visible in Global mode and is re-applied on return.
func (m *Machine) SetExternalSelection(id int) {
	m.externalID = id
	m.hasExternal = true
	if m.mode == Global {
		m.applyHighlights()
	}
}

// ClearExternalSelection removes the host selection highlight.
func (m *Machine) ClearExternalSelection() {
	m.hasExternal = false
	if m.mode == Global {
		m.applyHighlights()
	}
}

// ExternalSelection returns the host-selected keyword ID.
func (m *Machine) ExternalSelection() (int, bool) { return m.externalID, m.hasExternal }

// Hover marks keyword id as under the pointer. Ignored outside Global.
func (m *Machine) Hover(id int) {
	if m.mode != Global {
		return
	}
	n, ok := m.ctx.Registry().Get(id)
	if !ok || n == m.hovered {
		return
	}
	prev := m.hovered
	m.hovered = n
	if prev != nil {
		m.paint(prev)
	}
	m.paint(n)
}

// ClearHover removes the hover highlight.
func (m *Machine) ClearHover() {
	prev := m.hovered
	m.hovered = nil
	if prev != nil && m.mode == Global {
		m.paint(prev)
	}
}

// Hovered returns the hovered node.
func (m *Machine) Hovered() (*scene.Node, bool) { return m.hovered, m.hovered != nil }

// clearHighlights restores every node's laid-out appearance.
func (m *Machine) clearHighlights() {
	for _, n := range m.ctx.Registry().Nodes() {
		n.RestoreAppearance()
	}
}

// applyHighlights repaints every node from scratch.
func (m *Machine) applyHighlights() {
	for _, n := range m.ctx.Registry().Nodes() {
		m.paint(n)
	}
}

// paint sets one node's Global-mode appearance: the external selection wins,
// then its connections, then hover.
func (m *Machine) paint(n *scene.Node) {
	n.RestoreAppearance()
	if m.hasExternal {
		if n.ID() == m.externalID {
			n.SetColor(hoverColor)
			n.SetOpacity(1)
			n.SetScale(highlightScale)
			return
		}
		if sel, ok := m.ctx.Registry().Get(m.externalID); ok && connected(sel, n) {
			n.SetColor(connectedColor)
			return
		}
	}
	if n == m.hovered {
		n.SetColor(hoverColor)
		n.SetOpacity(1)
	}
}

func connected(sel, n *scene.Node) bool {
	for _, kw := range sel.Connections {
		if kw.ID == n.ID() {
			return true
		}
	}
	return false
}
