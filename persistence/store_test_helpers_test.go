package persistence

import (
	"time"

	"taskrealm/server/models"
)

// sampleArea is a three-node line START - COMBAT - BOSS.
func sampleArea(ownerID string) *models.Area {
	a, b, c := models.Coord{X: 0, Y: 3}, models.Coord{X: 1, Y: 3}, models.Coord{X: 2, Y: 3}
	objective := models.NewObjective(models.DailyQuantity{Count: 2}, "Complete 2 tasks today")
	return &models.Area{
		ID:          "area-" + ownerID,
		OwnerID:     ownerID,
		Sequence:    1,
		ThemeKey:    "stone_age",
		TargetNodes: models.DefaultTargetNodes,
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Nodes: map[models.Coord]*models.Node{
			a: {Coord: a, Type: models.NodeStart, Connections: []models.Coord{b}, Unlocked: true},
			b: {Coord: b, Type: models.NodeCombat, Connections: []models.Coord{a, c}, Objective: &objective},
			c: {Coord: c, Type: models.NodeBoss, Connections: []models.Coord{b}},
		},
	}
}

func sampleProgress(area *models.Area) *models.Progress {
	return &models.Progress{
		OwnerID:       area.OwnerID,
		CurrentAreaID: area.ID,
		CurrentNode:   models.Coord{X: 0, Y: 3},
		UpdatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func samplePath(ownerID string) *models.WorldPath {
	objective := models.NewObjective(models.SpecificTask{TaskID: "t1"}, "Complete \"Walk\"")
	return &models.WorldPath{
		ID:               "path-" + ownerID,
		OwnerID:          ownerID,
		WorldSequence:    1,
		ThemeKey:         "stone_age",
		LevelCount:       2,
		MiniBossPosition: 1,
		CreatedAt:        time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Levels: []*models.Level{
			{ID: "p1-l0", Position: 1, LaneCount: 1, Type: models.LevelMiniBoss, Reward: 150,
				Status: models.StatusUnlocked, Objectives: []models.Objective{objective},
				Enemy: &models.Enemy{Name: "Procrastination Imp", HP: 60, Attack: 8, Defense: 3}},
			{ID: "p2-l0", Position: 2, LaneCount: 1, Type: models.LevelBoss, Reward: 400,
				Status: models.StatusLocked, Objectives: []models.Objective{objective}},
		},
		Connections: []models.Connection{{From: "p1-l0", To: "p2-l0"}},
	}
}
