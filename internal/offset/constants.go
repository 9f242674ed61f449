package offset

// Solar panel assumptions.
// Panel: 1.767 m x 1.041 m, rated 375-395 Wp.
const (
	// PanelWatts is the peak rating of the reference panel in watts.
	PanelWatts = 385.0

	// DefaultPerformanceRatio accounts for shading, dirt, dust and other losses.
	// Observed revisions used 0.21 and 0.75; 0.21 is the most recent and the
	// same factor is applied to the water wheel, whose efficiency is unknown.
	DefaultPerformanceRatio = 0.21
)

// GridEmissionFactor is kg CO2 per kWh of the Swiss energy mix.
// 2021: 33.4 million tonnes CO2 from energy over ~297'222'222'222 kWh of
// primary energy consumption (BP Statistical Review of World Energy).
const GridEmissionFactor = 0.11237383

// TreeDailyOffset is kg CO2 absorbed per tree per day (10 kg/year / 365).
const TreeDailyOffset = 0.02739726

// Water wheel assumptions.
const (
	// NetHead of the wheel in meters.
	NetHead = 1.0

	// Gravity is the water acceleration in m/s².
	Gravity = 9.81

	// DefaultWheelWidthM is the river width in meters; a 1 m wide wheel sees
	// flow/width of the total discharge.
	DefaultWheelWidthM = 40.0

	// HoursPerDay converts watts into watt-hours per day.
	HoursPerDay = 24.0
)

// decimals is the rounding precision for intermediate and final results.
const decimals = 5
