package catalog

// themes are ordered by MinLevel; ThemeForLevel relies on that order.
var themes = []Theme{
	{
		Key: "stone_age", Name: "Stone Age", MinLevel: 1, Difficulty: 1.0,
		Colors:   Colors{Primary: "#8B7355", Secondary: "#D2B48C"},
		Affinity: "health",
		Enemies: []EnemyTemplate{
			{Name: "Cave Bear", HP: 40, Attack: 6, Defense: 2},
			{Name: "Sabertooth", HP: 35, Attack: 8, Defense: 1},
			{Name: "Rival Tribe Scout", HP: 30, Attack: 5, Defense: 3},
		},
		Boss:       EnemyTemplate{Name: "Mammoth Chieftain", HP: 200, Attack: 14, Defense: 6},
		RewardPool: []string{"flint_knife", "fur_cloak", "bone_charm"},
	},
	{
		Key: "bronze_age", Name: "Bronze Age", MinLevel: 5, Difficulty: 1.15,
		Colors:   Colors{Primary: "#CD7F32", Secondary: "#F4E1C1"},
		Affinity: "home",
		Enemies: []EnemyTemplate{
			{Name: "Chariot Raider", HP: 50, Attack: 9, Defense: 4},
			{Name: "Bronze Sentinel", HP: 60, Attack: 7, Defense: 6},
		},
		Boss:       EnemyTemplate{Name: "Warlord of Ur", HP: 260, Attack: 17, Defense: 8},
		RewardPool: []string{"bronze_shield", "clay_tablet", "amber_ring"},
	},
	{
		Key: "iron_age", Name: "Iron Age", MinLevel: 10, Difficulty: 1.3,
		Colors:   Colors{Primary: "#434B4D", Secondary: "#A9A9A9"},
		Affinity: "work",
		Enemies: []EnemyTemplate{
			{Name: "Legion Deserter", HP: 65, Attack: 11, Defense: 6},
			{Name: "Hill Fort Brute", HP: 80, Attack: 10, Defense: 7},
		},
		Boss:       EnemyTemplate{Name: "Iron King", HP: 320, Attack: 20, Defense: 10},
		RewardPool: []string{"iron_helm", "torc", "war_horn"},
	},
	{
		Key: "medieval", Name: "Medieval", MinLevel: 15, Difficulty: 1.5,
		Colors:   Colors{Primary: "#4B0082", Secondary: "#C0C0C0"},
		Affinity: "learning",
		Enemies: []EnemyTemplate{
			{Name: "Black Knight", HP: 90, Attack: 13, Defense: 9},
			{Name: "Plague Rat Swarm", HP: 55, Attack: 12, Defense: 3},
			{Name: "Bandit Archer", HP: 60, Attack: 14, Defense: 4},
		},
		Boss:       EnemyTemplate{Name: "Dragon of the Keep", HP: 400, Attack: 24, Defense: 12},
		RewardPool: []string{"longsword", "illuminated_tome", "signet_ring"},
	},
	{
		Key: "renaissance", Name: "Renaissance", MinLevel: 20, Difficulty: 1.7,
		Colors:   Colors{Primary: "#B22222", Secondary: "#FFD700"},
		Affinity: "creative",
		Enemies: []EnemyTemplate{
			{Name: "Duelist", HP: 85, Attack: 16, Defense: 8},
			{Name: "Clockwork Automaton", HP: 110, Attack: 13, Defense: 12},
		},
		Boss:       EnemyTemplate{Name: "The Grand Inquisitor", HP: 470, Attack: 27, Defense: 14},
		RewardPool: []string{"rapier", "sketchbook", "astrolabe"},
	},
	{
		Key: "industrial", Name: "Industrial", MinLevel: 30, Difficulty: 2.0,
		Colors:   Colors{Primary: "#2F4F4F", Secondary: "#B87333"},
		Affinity: "finance",
		Enemies: []EnemyTemplate{
			{Name: "Steam Golem", HP: 140, Attack: 17, Defense: 15},
			{Name: "Factory Foreman", HP: 100, Attack: 19, Defense: 9},
		},
		Boss:       EnemyTemplate{Name: "Iron Baron", HP: 560, Attack: 31, Defense: 17},
		RewardPool: []string{"pocket_watch", "goggles", "ledger"},
	},
	{
		Key: "modern", Name: "Modern", MinLevel: 40, Difficulty: 2.3,
		Colors:   Colors{Primary: "#1E90FF", Secondary: "#F5F5F5"},
		Affinity: "social",
		Enemies: []EnemyTemplate{
			{Name: "Rogue Drone", HP: 120, Attack: 22, Defense: 12},
			{Name: "Spam Hydra", HP: 150, Attack: 20, Defense: 14},
		},
		Boss:       EnemyTemplate{Name: "The Algorithm", HP: 650, Attack: 35, Defense: 20},
		RewardPool: []string{"smartwatch", "noise_cancelling_headset", "espresso_kit"},
	},
	{
		Key: "future", Name: "Future", MinLevel: 50, Difficulty: 2.7,
		Colors:   Colors{Primary: "#00CED1", Secondary: "#191970"},
		Affinity: "fitness",
		Enemies: []EnemyTemplate{
			{Name: "Void Sentinel", HP: 170, Attack: 26, Defense: 18},
			{Name: "Nanite Cloud", HP: 140, Attack: 29, Defense: 10},
		},
		Boss:       EnemyTemplate{Name: "Entropy Engine", HP: 780, Attack: 40, Defense: 24},
		RewardPool: []string{"plasma_blade", "grav_boots", "neural_link"},
	},
}

// worlds have fixed bosses so every player meets the same boss per world.
var worlds = []World{
	{Sequence: 1, ThemeKey: "stone_age", Name: "The Ember Plains", Difficulty: 1.0, Affinity: "health",
		Boss: EnemyTemplate{Name: "Mammoth Chieftain", HP: 200, Attack: 14, Defense: 6}},
	{Sequence: 2, ThemeKey: "bronze_age", Name: "Rivers of Copper", Difficulty: 1.15, Affinity: "home",
		Boss: EnemyTemplate{Name: "Warlord of Ur", HP: 260, Attack: 17, Defense: 8}},
	{Sequence: 3, ThemeKey: "iron_age", Name: "The Forged Highlands", Difficulty: 1.3, Affinity: "work",
		Boss: EnemyTemplate{Name: "Iron King", HP: 320, Attack: 20, Defense: 10}},
	{Sequence: 4, ThemeKey: "medieval", Name: "Kingdom of Quills", Difficulty: 1.5, Affinity: "learning",
		Boss: EnemyTemplate{Name: "Dragon of the Keep", HP: 400, Attack: 24, Defense: 12}},
	{Sequence: 5, ThemeKey: "renaissance", Name: "The Gilded Workshop", Difficulty: 1.7, Affinity: "creative",
		Boss: EnemyTemplate{Name: "The Grand Inquisitor", HP: 470, Attack: 27, Defense: 14}},
	{Sequence: 6, ThemeKey: "industrial", Name: "Smokestack Exchange", Difficulty: 2.0, Affinity: "finance",
		Boss: EnemyTemplate{Name: "Iron Baron", HP: 560, Attack: 31, Defense: 17}},
	{Sequence: 7, ThemeKey: "modern", Name: "Neon Commons", Difficulty: 2.3, Affinity: "social",
		Boss: EnemyTemplate{Name: "The Algorithm", HP: 650, Attack: 35, Defense: 20}},
	{Sequence: 8, ThemeKey: "future", Name: "The Orbital Gym", Difficulty: 2.7, Affinity: "fitness",
		Boss: EnemyTemplate{Name: "Entropy Engine", HP: 780, Attack: 40, Defense: 24}},
}

var miniBosses = []EnemyTemplate{
	{Name: "Procrastination Imp", HP: 90, Attack: 10, Defense: 4},
	{Name: "Distraction Wraith", HP: 80, Attack: 12, Defense: 3},
	{Name: "Deadline Golem", HP: 120, Attack: 9, Defense: 7},
	{Name: "Clutter Hydra", HP: 100, Attack: 11, Defense: 5},
}
