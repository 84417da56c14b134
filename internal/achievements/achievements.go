// Package achievements derives the user's achievements and level from the
// backend user record.
package achievements

import "github.com/arcanaland/tarotluna/internal/api"

// XPPerReading is the experience granted by one reading
const XPPerReading = 5

// ReferralLinkBase is the bot deep link used for referrals
const ReferralLinkBase = "https://t.me/TarotLunaSunBot?start=ref_"

// Achievement is an achievement with the user's progress on it
type Achievement struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Progress    int    `json:"progress" yaml:"progress"`
	MaxProgress int    `json:"max_progress" yaml:"max_progress"`
	Completed   bool   `json:"completed" yaml:"completed"`
	Claimed     bool   `json:"claimed" yaml:"claimed"`
	Reward      int    `json:"reward" yaml:"reward"`
}

// Claimable reports whether the reward can be claimed now
func (a Achievement) Claimable() bool {
	return a.Completed && !a.Claimed
}

// Progress is what the achievements are measured on
type Progress struct {
	TotalReadings   int
	ActiveDays      int
	Referrals       int
	PremiumRequests int
}

// ProgressOf reads the progress from a user record and optional stats.
// Stats take precedence for the reading count when present.
func ProgressOf(user api.User, stats *api.Stats) Progress {
	p := Progress{
		TotalReadings:   user.TotalReadings,
		Referrals:       user.ReferralsCount,
		PremiumRequests: user.PremiumRequests,
	}
	if stats != nil {
		p.TotalReadings = stats.TotalReadings
		p.ActiveDays = stats.ActiveDays
	}
	return p
}

type definition struct {
	key, name, description, icon string
	max, reward                  int
	measure                      func(Progress) int
	autoClaim                    bool
}

var definitions = []definition{
	{
		key: "first_reading", name: "Первый шаг", description: "Сделай свой первый расклад", icon: "🌟",
		max: 1, reward: 1, autoClaim: true,
		measure: func(p Progress) int { return p.TotalReadings },
	},
	{
		key: "loyal_user", name: "Верный искатель", description: "Сделай 10 раскладов", icon: "💎",
		max: 10, reward: 2,
		measure: func(p Progress) int { return p.TotalReadings },
	},
	{
		key: "daily_visitor", name: "Ежедневная практика", description: "Заходи 7 дней подряд", icon: "🔥",
		max: 7, reward: 3,
		measure: func(p Progress) int { return p.ActiveDays },
	},
	{
		key: "referral_master", name: "Мастер рефералов", description: "Пригласи 5 друзей", icon: "👥",
		max: 5, reward: 5,
		measure: func(p Progress) int { return p.Referrals },
	},
	{
		key: "premium_user", name: "Премиум искатель", description: "Сделай первую покупку", icon: "👑",
		max: 1, reward: 2,
		measure: func(p Progress) int {
			if p.PremiumRequests > 0 {
				return 1
			}
			return 0
		},
	},
	{
		key: "master_reader", name: "Мастер Таро", description: "Сделай 50 раскладов", icon: "🏆",
		max: 50, reward: 10,
		measure: func(p Progress) int { return p.TotalReadings },
	},
}

// Build derives every achievement from p
func Build(p Progress) []Achievement {
	out := make([]Achievement, 0, len(definitions))
	for _, d := range definitions {
		done := d.measure(p)
		completed := done >= d.max
		out = append(out, Achievement{
			Key:         d.key,
			Name:        d.name,
			Description: d.description,
			Icon:        d.icon,
			Progress:    min(done, d.max),
			MaxProgress: d.max,
			Completed:   completed,
			Claimed:     d.autoClaim && completed,
			Reward:      d.reward,
		})
	}
	return out
}

// Merge overlays backend records on derived achievements by key. The backend's
// completed and claimed flags win; unknown keys are appended.
func Merge(derived []Achievement, records []api.Achievement) []Achievement {
	out := append([]Achievement(nil), derived...)
	index := make(map[string]int, len(out))
	for i, a := range out {
		index[a.Key] = i
	}

	for _, r := range records {
		if r.Key == "" {
			continue
		}
		i, ok := index[r.Key]
		if !ok {
			out = append(out, Achievement{
				Key:         r.Key,
				Name:        r.Name,
				Description: r.Description,
				Icon:        "✨",
				Progress:    r.Progress,
				MaxProgress: r.MaxProgress,
				Completed:   r.Completed,
				Claimed:     r.Claimed,
				Reward:      r.Reward,
			})
			index[r.Key] = len(out) - 1
			continue
		}

		a := &out[i]
		a.Completed = a.Completed || r.Completed
		a.Claimed = a.Claimed || r.Claimed
		if r.MaxProgress > 0 {
			a.MaxProgress = r.MaxProgress
			a.Progress = min(max(a.Progress, r.Progress), r.MaxProgress)
		}
		if r.Reward > 0 {
			a.Reward = r.Reward
		}
	}
	return out
}

// Find returns the achievement with key
func Find(list []Achievement, key string) (Achievement, bool) {
	for _, a := range list {
		if a.Key == key {
			return a, true
		}
	}
	return Achievement{}, false
}

// Completed counts the completed achievements
func Completed(list []Achievement) int {
	n := 0
	for _, a := range list {
		if a.Completed {
			n++
		}
	}
	return n
}

// LevelInfo is the user's level progress
type LevelInfo struct {
	Level      int `json:"level" yaml:"level"`
	Experience int `json:"xp" yaml:"xp"`
	NextLevel  int `json:"xp_to_next" yaml:"xp_to_next"`
}

// Level computes the level progress from the user record
func Level(user api.User, p Progress) LevelInfo {
	level := user.Level
	if level < 1 {
		level = 1
	}
	return LevelInfo{
		Level:      level,
		Experience: p.TotalReadings * XPPerReading,
		NextLevel:  (level + 1) * 100,
	}
}
