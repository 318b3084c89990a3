package cli

import "time"

// CLIMessage represents communication between CLI client and service
type CLIMessage struct {
	Command   string            `json:"command"`
	Args      []string          `json:"args,omitempty"`
	Flags     map[string]string `json:"flags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// CLIResponse represents a response from the service
type CLIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ServiceStatus represents basic service status
type ServiceStatus struct {
	Running        bool     `json:"running"`
	Version        string   `json:"version"`
	Uptime         string   `json:"uptime"`
	Network        string   `json:"network"`
	ActiveNetworks []string `json:"active_networks"`
	Loading        bool     `json:"loading"`
	RecipeTitle    string   `json:"recipe_title,omitempty"`
	Notice         string   `json:"notice,omitempty"`
	AnalyticsFeed  string   `json:"analytics_feed,omitempty"`
}

// RecipeInfo summarises the recipe currently on screen
type RecipeInfo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}
