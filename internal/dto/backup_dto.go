package dto

// BackupFileInfo describes one existing backup artifact.
type BackupFileInfo struct {
	Name   string  `json:"name"`
	SizeKB float64 `json:"size_kb"`
}

// BackupStrategyItem is one row of the documented backup strategy table.
type BackupStrategyItem struct {
	Strategy string `json:"strategy"`
	Details  string `json:"details"`
}

// BackupPageResponse backs the admin backup page.
type BackupPageResponse struct {
	Strategy  []BackupStrategyItem `json:"strategy"`
	Backups   []BackupFileInfo     `json:"backups"`
	CSRFToken string               `json:"csrf_token"`
}
