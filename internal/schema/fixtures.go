package schema

// ContractTypes are the contract labels a job offer may carry.
var ContractTypes = []string{"stage", "alternance", "apprentissage", "cdd", "cdi"}

// Default values substituted when a job-offer response omits the field.
const (
	DefaultOfferTitle   = "Offre de stage"
	DefaultContractType = "stage"
)

// Resume is the candidate-résumé target schema. Every field is optional:
// absence encodes "not found", never wrong data.
func Resume() *Schema {
	return New("resume", []Field{
		{Name: "firstName", Type: TypeString, Description: "candidate first name"},
		{Name: "lastName", Type: TypeString, Description: "candidate last name"},
		{Name: "email", Type: TypeString, Description: "contact email address"},
		{Name: "phone", Type: TypeString, Description: "contact phone number, digits and spaces as written"},
		{Name: "address", Type: TypeString, Description: "postal address or city of residence"},
		{Name: "school", Type: TypeString, Description: "current or most recent school/university"},
		{Name: "degree", Type: TypeString, Description: "degree or diploma being prepared or obtained"},
		{Name: "summary", Type: TypeString, Description: "one or two sentence professional summary"},
		{Name: "skills", Type: TypeStringArray, Description: "technical and soft skills, one per entry"},
		{Name: "languages", Type: TypeStringArray, Description: "spoken languages with level when stated"},
		{Name: "experiences", Type: TypeStringArray, Description: "work experiences, one short line each (role, company, dates)"},
		{Name: "yearsOfExperience", Type: TypeNumber, Description: "total years of professional experience"},
	})
}

// JobOffer is the job-offer target schema. Title and contract type carry
// defaults; the rest is optional.
func JobOffer() *Schema {
	return New("job_offer", []Field{
		{Name: "title", Type: TypeString, Default: DefaultOfferTitle, Description: "offer title"},
		{Name: "contractType", Type: TypeString, Default: DefaultContractType, Enum: ContractTypes, Description: "contract type"},
		{Name: "company", Type: TypeString, Description: "hiring company name"},
		{Name: "location", Type: TypeString, Description: "work location (city or remote)"},
		{Name: "description", Type: TypeString, Description: "short description of the role"},
		{Name: "startDate", Type: TypeString, Description: "start date as written in the offer"},
		{Name: "durationMonths", Type: TypeNumber, Description: "duration in months for fixed-term contracts"},
		{Name: "salary", Type: TypeString, Description: "salary or gratification as written"},
		{Name: "skills", Type: TypeStringArray, Description: "required skills, one per entry"},
		{Name: "missions", Type: TypeStringArray, Description: "main missions, one short line each"},
	})
}
