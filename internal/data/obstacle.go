package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObstacleTemplate is a rectangular footprint size that the arena generator
// places at random positions when a match starts.
type ObstacleTemplate struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Depth  float64 `yaml:"depth"`
	Weight int     `yaml:"weight"` // relative pick probability
}

type obstacleFile struct {
	Obstacles []ObstacleTemplate `yaml:"obstacles"`
}

// ObstacleTable holds the template list plus the precomputed weight sum.
type ObstacleTable struct {
	templates   []ObstacleTemplate
	totalWeight int
}

// Count returns the number of templates.
func (t *ObstacleTable) Count() int {
	return len(t.templates)
}

// Pick selects a template by weighted roll. roll must be in [0, TotalWeight).
func (t *ObstacleTable) Pick(roll int) *ObstacleTemplate {
	for i := range t.templates {
		roll -= t.templates[i].Weight
		if roll < 0 {
			return &t.templates[i]
		}
	}
	if len(t.templates) == 0 {
		return nil
	}
	return &t.templates[len(t.templates)-1]
}

// TotalWeight returns the sum of all template weights.
func (t *ObstacleTable) TotalWeight() int {
	return t.totalWeight
}

// LoadObstacleTable loads obstacle templates from a YAML file.
func LoadObstacleTable(path string) (*ObstacleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read obstacle_list: %w", err)
	}
	var f obstacleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse obstacle_list: %w", err)
	}
	t := &ObstacleTable{templates: f.Obstacles}
	for i := range t.templates {
		if t.templates[i].Weight <= 0 {
			t.templates[i].Weight = 1
		}
		t.totalWeight += t.templates[i].Weight
	}
	return t, nil
}
