// Package team renders the lab roster from its JSON document.
package team

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/matsen/labpage/internal/dom"
	"github.com/matsen/labpage/internal/fetch"
)

// DefaultSource is the roster path relative to the site root.
const DefaultSource = "data.json"

// ContainerPrefix plus a status names the container element for a group.
const ContainerPrefix = "team-container-"

// Status is a member's lifecycle category.
type Status string

const (
	StatusCurrent Status = "current"
	StatusAlumni  Status = "alumni"
)

// StatusOrder is the order groups are rendered in.
var StatusOrder = []Status{StatusCurrent, StatusAlumni}

// Member is one roster record. Keys match the capitalized JSON fields.
type Member struct {
	Name     string `json:"Name"`
	Picture  string `json:"Picture"`
	Homepage string `json:"Homepage"`
	Title    string `json:"Title,omitempty"`
	Program  string `json:"Program"`
	Coadvise string `json:"Coadvise,omitempty"`
	Status   Status `json:"Status"`
}

// Group is the members sharing one status, in roster order.
type Group struct {
	Status  Status
	Members []Member
}

// ContainerID returns the element id the group renders into.
func (g Group) ContainerID() string {
	return ContainerPrefix + string(g.Status)
}

// Decode parses a roster document.
func Decode(data []byte) ([]Member, error) {
	var members []Member
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	return members, nil
}

// Load fetches and decodes the roster at source.
func Load(ctx context.Context, f fetch.Fetcher, source string) ([]Member, error) {
	data, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}
	return Decode(data)
}

// GroupByStatus partitions members into StatusOrder groups, keeping roster
// order inside each group. Every status gets a group, possibly empty.
// Members with any other status are dropped.
func GroupByStatus(members []Member) []Group {
	groups := make([]Group, len(StatusOrder))
	for i, s := range StatusOrder {
		groups[i].Status = s
		for _, m := range members {
			if m.Status == s {
				groups[i].Members = append(groups[i].Members, m)
			}
		}
	}
	return groups
}

const cardTemplate = `
            <div class="col">
                <div class="card h-100">
                    <img src="img/{{.Picture}}" class="card-img-top" alt="picture of {{.Name}}">
                    <div class="card-body">
                        <div><a href="{{.Homepage}}"><h5 class="card-title">{{.Name}}</h5></a></div>
                        <p class="card-text">
                            {{if .Title}}{{.Title}}, {{end}}{{.Program}}<br>
                            {{if .Coadvise}}{{.Coadvise}}<br>{{end}}
                        </p>
                    </div>
                </div>
            </div>
        `

// compiledCard is parsed at init time to fail fast on template errors.
var compiledCard = template.Must(template.New("card").Parse(cardTemplate))

// Card renders the card fragment for one member.
func Card(m Member) (string, error) {
	var buf bytes.Buffer
	if err := compiledCard.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("rendering card for %s: %w", m.Name, err)
	}
	return buf.String(), nil
}

// Render appends a card per member into the container of its group. Groups
// without members, or whose container the page lacks, render nothing.
func Render(doc *dom.Document, members []Member) error {
	for _, g := range GroupByStatus(members) {
		if len(g.Members) == 0 {
			continue
		}
		container := doc.GetElementByID(g.ContainerID())
		if container == nil {
			continue
		}
		for _, m := range g.Members {
			card, err := Card(m)
			if err != nil {
				return err
			}
			if err := doc.AppendHTML(container, card); err != nil {
				return fmt.Errorf("appending card for %s: %w", m.Name, err)
			}
		}
	}
	return nil
}
