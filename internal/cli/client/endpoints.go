package client

// API endpoints
const (
	endpointAssess    = "/api/assess"
	endpointBaselines = "/api/baselines"
	endpointChartSVG  = "/api/chart.svg"
	endpointChartPNG  = "/api/chart.png"
	endpointChat      = "/api/chat"
	endpointConfig    = "/api/config"
	endpointStats     = "/api/stats"
)
