package qweather

// QWeather v7 and GeoAPI response shapes. Numeric fields arrive as strings.

type lookupResponse struct {
	Code     string     `json:"code"`
	Location []location `json:"location"`
}

type location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lat  string `json:"lat"`
	Lon  string `json:"lon"`
	Adm1 string `json:"adm1"`
}

type historicalResponse struct {
	Code          string        `json:"code"`
	WeatherDaily  historyDay    `json:"weatherDaily"`
	WeatherHourly []historyHour `json:"weatherHourly"`
}

type historyDay struct {
	Date     string `json:"date"`
	TempMax  string `json:"tempMax"`
	TempMin  string `json:"tempMin"`
	Humidity string `json:"humidity"`
	Precip   string `json:"precip"`
}

type historyHour struct {
	Time      string `json:"time"`
	Temp      string `json:"temp"`
	Icon      string `json:"icon"`
	WindSpeed string `json:"windSpeed"`
}

type forecastResponse struct {
	Code  string        `json:"code"`
	Daily []forecastDay `json:"daily"`
}

type forecastDay struct {
	FxDate       string `json:"fxDate"`
	TempMax      string `json:"tempMax"`
	TempMin      string `json:"tempMin"`
	IconDay      string `json:"iconDay"`
	WindSpeedDay string `json:"windSpeedDay"`
	Humidity     string `json:"humidity"`
	Precip       string `json:"precip"`
}

// apiStatus is the "code" field; "200" is success.
type apiStatus interface{ status() string }

func (r lookupResponse) status() string     { return r.Code }
func (r historicalResponse) status() string { return r.Code }
func (r forecastResponse) status() string   { return r.Code }
