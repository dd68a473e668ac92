package corpus

type seedRecord struct {
	Claim      string
	Category   string
	DebunkedBy []string
}

// seedRecords bootstraps a fresh corpus database. Embeddings are filled in
// by EnsureEmbeddings at startup.
var seedRecords = []seedRecord{
	{
		Claim:      "Drinking hot water every 15 minutes kills the coronavirus",
		Category:   "medical",
		DebunkedBy: []string{"WHO", "PIB Fact Check"},
	},
	{
		Claim:      "5G mobile towers spread COVID-19",
		Category:   "medical",
		DebunkedBy: []string{"WHO", "Reuters Fact Check"},
	},
	{
		Claim:      "Vaccines cause autism in children",
		Category:   "medical",
		DebunkedBy: []string{"CDC", "WHO"},
	},
	{
		Claim:      "Eating garlic prevents coronavirus infection",
		Category:   "medical",
		DebunkedBy: []string{"WHO", "AFP Fact Check"},
	},
	{
		Claim:      "Climate change is a hoax invented by scientists for grant money",
		Category:   "climate",
		DebunkedBy: []string{"NASA", "IPCC"},
	},
	{
		Claim:      "The 2020 US election was stolen through millions of fraudulent votes",
		Category:   "political",
		DebunkedBy: []string{"Reuters Fact Check", "AP Fact Check"},
	},
	{
		Claim:      "Cow urine cures cancer and COVID-19",
		Category:   "medical",
		DebunkedBy: []string{"PIB Fact Check", "AltNews"},
	},
	{
		Claim:      "Microchips are implanted through COVID-19 vaccines to track people",
		Category:   "medical",
		DebunkedBy: []string{"Reuters Fact Check", "Snopes"},
	},
}
