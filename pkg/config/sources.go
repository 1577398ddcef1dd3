package config

const (
	NaturalEarthLandURL = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_land.geojson"

	DefaultCentroidsPath = "datasets/countries.csv"
	DefaultEmissionsPath = "datasets/normalized_emissions.json"
	DefaultDisastersPath = "datasets/combined_disasters_aggregated.json"
	DefaultSufferingPath = "datasets/combined_disasters_suffering.json"
)
