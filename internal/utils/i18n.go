package utils

// Minimal server-side i18n for fixed keys.
// UI strings should live in the frontend; server provides only essentials.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":        "ok",
		"health.degraded":  "degraded",
		"entry.saved":      "Pain log saved",
		"entry.empty":      "Mark at least one point before saving",
		"history.signin":   "Sign in to see your history",
		"session.notfound": "This marking session has expired",
	},
	"zh": {
		"health.ok":        "好的",
		"health.degraded":  "服务降级",
		"entry.saved":      "疼痛记录已保存",
		"entry.empty":      "请至少标记一个疼痛点后再保存",
		"history.signin":   "登录后查看历史记录",
		"session.notfound": "标记会话已过期",
		// body parts
		"Body":            "身体",
		"Head":            "头部",
		"Neck":            "颈部",
		"Left Shoulder":   "左肩",
		"Right Shoulder":  "右肩",
		"Left Upper Arm":  "左上臂",
		"Right Upper Arm": "右上臂",
		"Left Elbow":      "左肘",
		"Right Elbow":     "右肘",
		"Left Forearm":    "左前臂",
		"Right Forearm":   "右前臂",
		"Left Hand":       "左手",
		"Right Hand":      "右手",
		"Upper Chest":     "上胸部",
		"Left Chest":      "左胸",
		"Right Chest":     "右胸",
		"Upper Abdomen":   "上腹部",
		"Lower Abdomen":   "下腹部",
		"Left Hip":        "左髋",
		"Right Hip":       "右髋",
		"Pelvis":          "骨盆",
		"Left Thigh":      "左大腿",
		"Right Thigh":     "右大腿",
		"Left Knee":       "左膝",
		"Right Knee":      "右膝",
		"Left Shin":       "左小腿",
		"Right Shin":      "右小腿",
		"Left Ankle":      "左踝",
		"Right Ankle":     "右踝",
		"Left Foot":       "左脚",
		"Right Foot":      "右脚",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then to the key itself. Body part names are their own English text.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
