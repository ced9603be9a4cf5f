package onboarding

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldKind is the value shape a form field holds
type FieldKind int

const (
	KindScalar FieldKind = iota + 1
	KindSet
	KindFile
	KindFileMap
)

func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSet:
		return "set"
	case KindFile:
		return "file"
	case KindFileMap:
		return "file_map"
	default:
		return "unknown"
	}
}

// Field names a value in the form record
type Field string

const (
	// Company information
	FieldLegalCompanyName Field = "legalCompanyName"
	FieldStreetAddress    Field = "streetAddress"
	FieldCity             Field = "city"
	FieldState            Field = "state"
	FieldZipCode          Field = "zipCode"
	FieldCountry          Field = "country"
	FieldIndustry         Field = "industry"
	FieldAnnualRevenue    Field = "annualRevenue"
	FieldEmployeeCount    Field = "employeeCount"
	FieldYearsInBusiness  Field = "yearsInBusiness"

	// Contact person, also used by the CFO professional background
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldJobTitle  Field = "jobTitle"

	FieldFinancialChallenges  Field = "financialChallenges"
	FieldCommunicationMethods Field = "communicationMethods"
	FieldEngagementDuration   Field = "engagementDuration"
	FieldSupportAreas         Field = "supportAreas"

	// CFO profile
	FieldEducation               Field = "education"
	FieldResume                  Field = "resume"
	FieldLinkedInURL             Field = "linkedinUrl"
	FieldCertifications          Field = "certifications"
	FieldCustomCertificationName Field = "customCertificationName"
	FieldCertificationFiles      Field = "certificationFiles"
	FieldAreasOfExpertise        Field = "areasOfExpertise"
	FieldExperienceLevel         Field = "experienceLevel"
	FieldCompanySize             Field = "companySize"
	FieldIndustriesWorked        Field = "industriesWorked"
	FieldAvailability            Field = "availability"
	FieldEngagementLength        Field = "engagementLength"
	FieldEngagementModel         Field = "engagementModel"
	FieldRateExpectations        Field = "rateExpectations"
)

// CertificationOther is the certification that requires a custom name
const CertificationOther = "Other"

var fieldKinds = map[Field]FieldKind{
	FieldLegalCompanyName: KindScalar,
	FieldStreetAddress:    KindScalar,
	FieldCity:             KindScalar,
	FieldState:            KindScalar,
	FieldZipCode:          KindScalar,
	FieldCountry:          KindScalar,
	FieldIndustry:         KindScalar,
	FieldAnnualRevenue:    KindScalar,
	FieldEmployeeCount:    KindScalar,
	FieldYearsInBusiness:  KindScalar,

	FieldFirstName: KindScalar,
	FieldLastName:  KindScalar,
	FieldJobTitle:  KindScalar,

	FieldFinancialChallenges:  KindSet,
	FieldCommunicationMethods: KindSet,
	FieldEngagementDuration:   KindScalar,
	FieldSupportAreas:         KindSet,

	FieldEducation:               KindScalar,
	FieldResume:                  KindFile,
	FieldLinkedInURL:             KindScalar,
	FieldCertifications:          KindSet,
	FieldCustomCertificationName: KindScalar,
	FieldCertificationFiles:      KindFileMap,
	FieldAreasOfExpertise:        KindSet,
	FieldExperienceLevel:         KindScalar,
	FieldCompanySize:             KindScalar,
	FieldIndustriesWorked:        KindSet,
	FieldAvailability:            KindScalar,
	FieldEngagementLength:        KindScalar,
	FieldEngagementModel:         KindScalar,
	FieldRateExpectations:        KindScalar,
}

// slotsFor maps a set field to the file map whose slots mirror its members
var slotsFor = map[Field]Field{
	FieldCertifications: FieldCertificationFiles,
}

// KindOf returns the kind of a known field
func KindOf(field Field) (FieldKind, error) {
	kind, ok := fieldKinds[field]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return kind, nil
}

// FileRef is an opaque handle to a file the user picked. No bytes are held.
type FileRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// NewFileRef creates a handle for a picked file
func NewFileRef(name string, size int64, contentType string) *FileRef {
	return &FileRef{
		ID:          uuid.New(),
		Name:        name,
		Size:        size,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}
}

// FormState holds every value collected across all steps of one session, keyed by field name.
// Writes are checked against the field schema.
type FormState struct {
	scalars  map[Field]string
	sets     map[Field]map[string]struct{}
	files    map[Field]*FileRef
	fileMaps map[Field]map[string]*FileRef
}

// NewFormState creates an empty form record
func NewFormState() *FormState {
	return &FormState{
		scalars:  make(map[Field]string),
		sets:     make(map[Field]map[string]struct{}),
		files:    make(map[Field]*FileRef),
		fileMaps: make(map[Field]map[string]*FileRef),
	}
}

func (f *FormState) check(field Field, want FieldKind) error {
	kind, err := KindOf(field)
	if err != nil {
		return err
	}
	if kind != want {
		return &FieldKindError{Field: field, Want: want, Got: kind}
	}
	return nil
}

// SetScalar stores a string value
func (f *FormState) SetScalar(field Field, value string) error {
	if err := f.check(field, KindScalar); err != nil {
		return err
	}
	f.scalars[field] = value
	return nil
}

// Scalar returns a string value, empty when unset
func (f *FormState) Scalar(field Field) string {
	return f.scalars[field]
}

// SetMember adds or removes an item from a set field. Removing an item also
// removes the upload slot keyed by it, so a stale upload cannot satisfy validation.
func (f *FormState) SetMember(field Field, item string, included bool) error {
	if err := f.check(field, KindSet); err != nil {
		return err
	}
	item = strings.TrimSpace(item)
	if item == "" {
		return fmt.Errorf("%w for field %q", ErrEmptyItem, field)
	}

	members := f.sets[field]
	slotField, hasSlots := slotsFor[field]

	if included {
		if members == nil {
			members = make(map[string]struct{})
			f.sets[field] = members
		}
		if _, ok := members[item]; ok {
			return nil
		}
		members[item] = struct{}{}
		if hasSlots {
			slots := f.fileMaps[slotField]
			if slots == nil {
				slots = make(map[string]*FileRef)
				f.fileMaps[slotField] = slots
			}
			slots[item] = nil
		}
		return nil
	}

	delete(members, item)
	if hasSlots {
		delete(f.fileMaps[slotField], item)
	}
	return nil
}

// HasMember reports whether item is in a set field
func (f *FormState) HasMember(field Field, item string) bool {
	_, ok := f.sets[field][item]
	return ok
}

// Members returns the sorted members of a set field
func (f *FormState) Members(field Field) []string {
	members := make([]string, 0, len(f.sets[field]))
	for item := range f.sets[field] {
		members = append(members, item)
	}
	sort.Strings(members)
	return members
}

// AddCertification checks a certification and opens its upload slot
func (f *FormState) AddCertification(name string) error {
	return f.SetMember(FieldCertifications, name, true)
}

// RemoveCertification unchecks a certification and drops its upload
func (f *FormState) RemoveCertification(name string) error {
	return f.SetMember(FieldCertifications, name, false)
}

// SetFile attaches a file handle to a single-file field; nil clears it
func (f *FormState) SetFile(field Field, ref *FileRef) error {
	if err := f.check(field, KindFile); err != nil {
		return err
	}
	if ref == nil {
		delete(f.files, field)
		return nil
	}
	f.files[field] = ref
	return nil
}

// File returns the handle attached to a single-file field
func (f *FormState) File(field Field) *FileRef {
	return f.files[field]
}

// SetKeyedFile attaches a file handle to an existing slot of a file map; nil empties the slot
func (f *FormState) SetKeyedFile(field Field, key string, ref *FileRef) error {
	if err := f.check(field, KindFileMap); err != nil {
		return err
	}
	slots := f.fileMaps[field]
	if _, ok := slots[key]; !ok {
		return fmt.Errorf("%w: %s[%q]", ErrSlotNotFound, field, key)
	}
	slots[key] = ref
	return nil
}

// KeyedFile returns the handle in a slot and whether the slot exists
func (f *FormState) KeyedFile(field Field, key string) (*FileRef, bool) {
	ref, ok := f.fileMaps[field][key]
	return ref, ok
}

// KeyedFiles returns a copy of a file map
func (f *FormState) KeyedFiles(field Field) map[string]*FileRef {
	out := make(map[string]*FileRef, len(f.fileMaps[field]))
	for k, v := range f.fileMaps[field] {
		out[k] = v
	}
	return out
}

// Snapshot returns a deep copy that later edits do not affect
func (f *FormState) Snapshot() *FormState {
	out := NewFormState()
	for k, v := range f.scalars {
		out.scalars[k] = v
	}
	for k, members := range f.sets {
		cp := make(map[string]struct{}, len(members))
		for item := range members {
			cp[item] = struct{}{}
		}
		out.sets[k] = cp
	}
	for k, ref := range f.files {
		out.files[k] = copyRef(ref)
	}
	for k, slots := range f.fileMaps {
		cp := make(map[string]*FileRef, len(slots))
		for key, ref := range slots {
			cp[key] = copyRef(ref)
		}
		out.fileMaps[k] = cp
	}
	return out
}

func copyRef(ref *FileRef) *FileRef {
	if ref == nil {
		return nil
	}
	cp := *ref
	return &cp
}

// Values flattens the record into field name -> value
func (f *FormState) Values() map[string]any {
	out := make(map[string]any)
	for k, v := range f.scalars {
		out[string(k)] = v
	}
	for k := range f.sets {
		out[string(k)] = f.Members(k)
	}
	for k, ref := range f.files {
		out[string(k)] = ref
	}
	for k := range f.fileMaps {
		out[string(k)] = f.KeyedFiles(k)
	}
	return out
}

// MarshalJSON encodes the flat field map
func (f *FormState) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Values())
}

// FormStateFromValues builds a form record from decoded JSON or YAML.
// Set fields are applied before file maps so that upload slots exist.
func FormStateFromValues(values map[string]any) (*FormState, error) {
	form := NewFormState()
	var deferred []Field

	for name, raw := range values {
		field := Field(name)
		kind, err := KindOf(field)
		if err != nil {
			return nil, err
		}

		switch kind {
		case KindScalar:
			if raw == nil {
				continue
			}
			if err := form.SetScalar(field, fmt.Sprint(raw)); err != nil {
				return nil, err
			}
		case KindSet:
			items, err := toStrings(raw)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", field, err)
			}
			for _, item := range items {
				if err := form.SetMember(field, item, true); err != nil {
					return nil, err
				}
			}
		case KindFile:
			ref, err := toFileRef(raw)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", field, err)
			}
			if err := form.SetFile(field, ref); err != nil {
				return nil, err
			}
		case KindFileMap:
			deferred = append(deferred, field)
		}
	}

	for _, field := range deferred {
		slots, ok := values[string(field)].(map[string]any)
		if !ok {
			if values[string(field)] == nil {
				continue
			}
			return nil, fmt.Errorf("field %q: expected an object, got %T", field, values[string(field)])
		}
		for key, raw := range slots {
			ref, err := toFileRef(raw)
			if err != nil {
				return nil, fmt.Errorf("field %q[%q]: %w", field, key, err)
			}
			if err := form.SetKeyedFile(field, key, ref); err != nil {
				return nil, err
			}
		}
	}

	return form, nil
}

func toStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings, got %T item", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", raw)
	}
}

func toFileRef(raw any) (*FileRef, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return NewFileRef(v, 0, ""), nil
	case map[string]any:
		name, _ := v["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("file is missing a name")
		}
		ref := NewFileRef(name, 0, "")
		switch size := v["size"].(type) {
		case int:
			ref.Size = int64(size)
		case int64:
			ref.Size = size
		case float64:
			ref.Size = int64(size)
		}
		if ct, ok := v["content_type"].(string); ok {
			ref.ContentType = ct
		}
		return ref, nil
	default:
		return nil, fmt.Errorf("expected a file name or object, got %T", raw)
	}
}
