package knowledge

// seedDocuments returns the initial document set loaded at Initialize
// when seeding is enabled. These cover the compliance and integration
// topics the core agents are most often asked about.
func seedDocuments() []Document {
	return []Document{
		{
			Title:  "PDPL Compliance Guide",
			Domain: "Healthcare",
			Tags:   []string{"compliance", "pdpl", "privacy"},
			Author: "BrainSAIT",
			Content: "Saudi Arabia Personal Data Protection Law (PDPL) regulates the " +
				"collection, processing, and disclosure of personal data. Healthcare " +
				"providers must obtain explicit consent before processing patient data, " +
				"appoint a data protection officer, and report breaches to SDAIA within " +
				"72 hours. Cross-border transfers require an adequacy decision or " +
				"explicit authorization. Patient records fall under sensitive data and " +
				"carry stricter processing conditions, including purpose limitation and " +
				"minimum retention periods.",
		},
		{
			Title:  "NPHIES Integration Guide",
			Domain: "Healthcare",
			Tags:   []string{"nphies", "claims", "integration"},
			Author: "BrainSAIT",
			Content: "NPHIES (National Platform for Health Information Exchange " +
				"Services) is the unified claims and eligibility platform for Saudi " +
				"health insurance. Providers submit claims as FHIR R4 bundles over the " +
				"NPHIES gateway. Each claim requires prior eligibility verification, a " +
				"valid provider license, and ICD-10-AM coded diagnoses. Responses " +
				"arrive asynchronously; rejected claims carry adjudication codes that " +
				"map to correctable submission errors.",
		},
		{
			Title:  "ClaimLinc User Manual",
			Domain: "Business",
			Tags:   []string{"claimlinc", "manual", "claims"},
			Author: "BrainSAIT",
			Content: "ClaimLinc automates the medical claims lifecycle from intake to " +
				"settlement. Submit a claim by uploading the encounter record; " +
				"ClaimLinc validates coding, checks eligibility through NPHIES, and " +
				"routes the claim for submission. Track status from the claims " +
				"dashboard. Denied claims enter the resubmission queue with suggested " +
				"corrections ranked by historical acceptance rate.",
		},
	}
}
