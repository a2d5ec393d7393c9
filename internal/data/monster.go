package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MonsterArchetype is the tuning block for one monster kind. All of the AI
// numbers live here so balancing is a data change, not a code change.
type MonsterArchetype struct {
	Name                string  `yaml:"name"`
	MaxHealth           float64 `yaml:"max_health"`
	MoveSpeed           float64 `yaml:"move_speed"`            // units/s while hunting
	WanderSpeed         float64 `yaml:"wander_speed"`          // units/s while idle or lost
	VisionRange         float64 `yaml:"vision_range"`          // planar detection radius
	AttackRange         float64 `yaml:"attack_range"`
	AttackDamagePercent float64 `yaml:"attack_damage_percent"` // fraction of target max health per hit
	AttackIntervalMS    int     `yaml:"attack_interval_ms"`
	RoarDurationMS      int     `yaml:"roar_duration_ms"`
	SearchDurationMS    int     `yaml:"search_duration_ms"`    // time in LOST before giving up
	LoseSightMS         int     `yaml:"lose_sight_ms"`         // unseen time before HUNTING ends
}

type monsterFile struct {
	Monsters []MonsterArchetype `yaml:"monsters"`
}

// MonsterTable holds every archetype indexed by name.
type MonsterTable struct {
	archetypes map[string]*MonsterArchetype
}

// NewMonsterTable builds a table from an archetype list.
func NewMonsterTable(archetypes []MonsterArchetype) *MonsterTable {
	t := &MonsterTable{archetypes: make(map[string]*MonsterArchetype, len(archetypes))}
	for i := range archetypes {
		m := &archetypes[i]
		t.archetypes[m.Name] = m
	}
	return t
}

// Get returns the archetype, or nil if not defined.
func (t *MonsterTable) Get(name string) *MonsterArchetype {
	return t.archetypes[name]
}

// Count returns the number of archetypes.
func (t *MonsterTable) Count() int {
	return len(t.archetypes)
}

// LoadMonsterTable loads the archetype list from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster_list: %w", err)
	}
	var f monsterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monster_list: %w", err)
	}
	t := &MonsterTable{archetypes: make(map[string]*MonsterArchetype, len(f.Monsters))}
	for i := range f.Monsters {
		m := &f.Monsters[i]
		if m.Name == "" {
			return nil, fmt.Errorf("monster_list: entry %d has no name", i)
		}
		t.archetypes[m.Name] = m
	}
	return t, nil
}
