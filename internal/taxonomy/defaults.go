package taxonomy

// DefaultAmenities is the amenity field map of the reference park exports.
// AMPSTA is an older spelling of AMPITHEATER found in some exports.
var DefaultAmenities = []FieldSlug{
	{"PARKING", "park_parking"},
	{"RESTROOM", "park_restrooms"},
	{"PICNICTABLES", "park_picnic_tables"},
	{"PICNICSHELTER", "park_picnic_shelters"},
	{"BBQ", "park_bbq"},
	{"DOGPARK", "park_dog_park"},
	{"TRAILHEADS", "park_trailheads"},
	{"AMPITHEATER", "park_ampitheater"},
	{"AMPSTA", "park_ampitheater"},
	{"CONCESSION", "park_concessions"},
}

// DefaultActivities is the activity field map of the reference park exports.
var DefaultActivities = []FieldSlug{
	{"SOCCFOOT", "park_soccer"},
	{"BASEBALL", "park_baseball"},
	{"SOFTBALL", "park_softball"},
	{"BASKETBALL", "park_basketball"},
	{"VOLLEYBALL", "park_volleyball"},
	{"PICKLEBALL", "park_pickleball"},
	{"TENNIS", "park_tennis"},
	{"SKATEFAC", "park_skating"},
	{"SHUFFLEBOARD", "park_shuffleboard"},
	{"DISCGOLF", "park_disc"},
	{"HORSESHOE", "park_horseshoe"},
	{"PLAYGROUND", "park_playground"},
	{"FITNESSZONE", "park_exercise"},
	{"SWIMMINGPOOL", "park_pool"},
	{"SPLASHPADS", "park_splash"},
}

// Default returns a Table built from DefaultAmenities and DefaultActivities.
func Default() *Table {
	return New(DefaultAmenities, DefaultActivities)
}
