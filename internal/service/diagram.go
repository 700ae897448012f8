package service

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"go-procflow/internal/domain"
)

// diagram is what inspectDiagram learns from a BPMN 2.0 document.
type diagram struct {
	processName string
	checks      domain.DiagramChecks
}

// inspectDiagram walks the element tree of a BPMN document. Elements are
// matched by local name so any namespace prefix is accepted.
func inspectDiagram(doc string) (diagram, error) {
	var d diagram
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return d, nil
		}
		if err != nil {
			return d, err
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "process":
			if d.processName == "" {
				d.processName = attr(el, "name")
			}
		case "startEvent":
			d.checks.HasStartEvent = true
		case "endEvent":
			d.checks.HasEndEvent = true
		case "userTask", "serviceTask":
			d.checks.HasTasks = true
		}
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
