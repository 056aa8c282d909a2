package attrs

import (
	"errors"
	"maps"
	"strings"
	"testing"
)

func fullRecord() Overrides {
	return Overrides{
		JWT:                "Bearer eyJhbGciOiJIUzUxMiJ9.payload.sig",
		CustomerOUID:       "1E5A1F564E180BD3EBF02D7D5007DB28",
		BillingAccountOUID: "BA123",
		ParentOUID:         "PA456",
		OfferingOUID:       "OF789",
		SpecOUID:           "SP012",
		MSISDN:             "+33612345678",
		GoodwillSizeGB:     "2",
		GoodwillReason:     "boosterOrPassRefund",
		Lang:               "en",
		XBrand:             "carebot",
		XChannel:           "chat",
	}
}

func TestBuildDisabled(t *testing.T) {
	got := Build(fullRecord(), false)

	if got == nil {
		t.Fatal("Build() returned nil map, want empty map")
	}
	if len(got) != 0 {
		t.Errorf("Build() with overrides disabled = %v, want empty", got)
	}
}

func TestBuildFiltersEmptyValues(t *testing.T) {
	o := fullRecord()
	o.JWT = ""
	o.BillingAccountOUID = "   " // whitespace-only counts as empty
	o.MSISDN = "\t\n"
	o.Lang = ""

	got := Build(o, true)

	for _, absent := range []string{KeyJWT, KeyBillingAccountOUID, KeyMSISDN, KeyLang} {
		if _, ok := got[absent]; ok {
			t.Errorf("key %q should be filtered out, got %q", absent, got[absent])
		}
	}
	for _, present := range []string{KeyCustomerOUID, KeyParentOUID, KeyOfferingOUID, KeySpecOUID, KeyGoodwillReason, KeyXBrand, KeyXChannel} {
		if _, ok := got[present]; !ok {
			t.Errorf("key %q should be present", present)
		}
	}
}

// Values pass through verbatim; trimming applies to the emptiness test only.
func TestBuildKeepsRawValues(t *testing.T) {
	o := fullRecord()
	o.JWT = "Bearer abc.def.ghi"

	got := Build(o, true)

	if got[KeyJWT] != "Bearer abc.def.ghi" {
		t.Errorf("jwt = %q, want raw value preserved", got[KeyJWT])
	}
	if got[KeyCustomerOUID] != o.CustomerOUID {
		t.Errorf("customerOuid = %q, want %q", got[KeyCustomerOUID], o.CustomerOUID)
	}
}

func TestBuildGoodwillSize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"default", "2", "2"},
		{"in range", "500", "500"},
		{"clamped to minimum", "0", "1"},
		{"negative clamped", "-7", "1"},
		{"surrounding whitespace", " 5 ", "5"},
		{"parse failure falls back", "abc", "2"},
		{"empty falls back", "", "2"},
		{"float falls back", "2.5", "2"},
		{"above range passes through", "5000", "5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := fullRecord()
			o.GoodwillSizeGB = tt.raw

			got := Build(o, true)

			if got[KeyGoodwillSizeGB] != tt.want {
				t.Errorf("goodwillSizeGb = %q, want %q", got[KeyGoodwillSizeGB], tt.want)
			}
		})
	}
}

// The size key is present even when every other field is empty.
func TestBuildGoodwillSizeAlwaysPresent(t *testing.T) {
	got := Build(Overrides{}, true)

	if got[KeyGoodwillSizeGB] != "2" {
		t.Errorf("goodwillSizeGb = %q, want \"2\"", got[KeyGoodwillSizeGB])
	}
	if len(got) != 1 {
		t.Errorf("empty record should build to size only, got %v", got)
	}
}

func TestBuildGoodwillReasonOmittedWhenEmpty(t *testing.T) {
	o := fullRecord()
	o.GoodwillReason = ""

	got := Build(o, true)

	if _, ok := got[KeyGoodwillReason]; ok {
		t.Error("empty goodwillReason should be omitted")
	}
}

func TestBuildIdempotent(t *testing.T) {
	o := fullRecord()

	first := Build(o, true)
	second := Build(o, true)

	if !maps.Equal(first, second) {
		t.Errorf("Build is not idempotent: %v vs %v", first, second)
	}
}

func TestNewOverrides(t *testing.T) {
	seed := Seed{
		CustomerOUID:   "CUST01",
		GoodwillSizeGB: 4,
		GoodwillReason: "gesture",
		Language:       "fr",
		Brand:          "acme",
		Channel:        "phone",
	}

	o := NewOverrides(seed)

	if o.CustomerOUID != "CUST01" {
		t.Errorf("CustomerOUID = %q, want CUST01", o.CustomerOUID)
	}
	if o.GoodwillSizeGB != "4" {
		t.Errorf("GoodwillSizeGB = %q, want \"4\"", o.GoodwillSizeGB)
	}
	if o.GoodwillReason != "gesture" || o.Lang != "fr" || o.XBrand != "acme" || o.XChannel != "phone" {
		t.Errorf("unexpected record: %+v", o)
	}
	// Unset keys start empty
	if o.JWT != "" || o.MSISDN != "" || o.BillingAccountOUID != "" {
		t.Errorf("expected auth and scoping keys empty, got %+v", o)
	}
}

func TestNewOverridesDefaults(t *testing.T) {
	o := NewOverrides(Seed{GoodwillSizeGB: -3, Language: "xx"})

	if o.GoodwillSizeGB != "2" {
		t.Errorf("out-of-range seed size should default, got %q", o.GoodwillSizeGB)
	}
	if o.GoodwillReason != DefaultGoodwillReason {
		t.Errorf("empty seed reason should default, got %q", o.GoodwillReason)
	}
	if o.Lang != DefaultLanguage {
		t.Errorf("invalid seed language should default, got %q", o.Lang)
	}
}

func TestBaseline(t *testing.T) {
	got := Baseline("carebot", "chat", "en")

	want := map[string]string{
		KeyXBrand:   "carebot",
		KeyXChannel: "chat",
		KeyLang:     "en",
	}
	if !maps.Equal(got, want) {
		t.Errorf("Baseline() = %v, want %v", got, want)
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"set jwt", KeyJWT, "Bearer tok", nil},
		{"set customer", KeyCustomerOUID, "C1", nil},
		{"set goodwill size", KeyGoodwillSizeGB, "10", nil},
		{"goodwill size zero", KeyGoodwillSizeGB, "0", ErrInvalidValue},
		{"goodwill size too large", KeyGoodwillSizeGB, "1001", ErrInvalidValue},
		{"goodwill size not a number", KeyGoodwillSizeGB, "lots", ErrInvalidValue},
		{"set lang en", KeyLang, "en", nil},
		{"set lang fr", KeyLang, "fr", nil},
		{"invalid lang", KeyLang, "de", ErrInvalidValue},
		{"clear lang", KeyLang, "", nil},
		{"unknown key", "favouriteColour", "blue", ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := fullRecord()

			err := o.Set(tt.key, tt.value)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Set(%q, %q) = %v, want nil", tt.key, tt.value, err)
				}
				got, _ := o.Value(tt.key)
				if tt.key == KeyGoodwillSizeGB {
					// stored normalized
					if got != strings.TrimSpace(tt.value) {
						t.Errorf("stored %q, want %q", got, tt.value)
					}
				} else if got != tt.value {
					t.Errorf("stored %q, want %q", got, tt.value)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Set(%q, %q) = %v, want %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestUnset(t *testing.T) {
	o := fullRecord()

	if err := o.Unset(KeyJWT); err != nil {
		t.Fatalf("Unset(jwt) = %v", err)
	}
	if o.JWT != "" {
		t.Errorf("jwt not cleared: %q", o.JWT)
	}

	// Size resets to default instead of clearing
	if err := o.Unset(KeyGoodwillSizeGB); err != nil {
		t.Fatalf("Unset(goodwillSizeGb) = %v", err)
	}
	if o.GoodwillSizeGB != "2" {
		t.Errorf("goodwillSizeGb = %q, want \"2\"", o.GoodwillSizeGB)
	}

	if err := o.Unset("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Unset(unknown) = %v, want ErrUnknownKey", err)
	}
}

func TestValue(t *testing.T) {
	o := fullRecord()

	if v, ok := o.Value(KeyMSISDN); !ok || v != "+33612345678" {
		t.Errorf("Value(msisdn) = %q, %v", v, ok)
	}
	if _, ok := o.Value("bogus"); ok {
		t.Error("Value(bogus) reported existence")
	}
}

func TestKeysCoverRecord(t *testing.T) {
	o := fullRecord()
	for _, key := range Keys() {
		if _, ok := o.Value(key); !ok {
			t.Errorf("Keys() lists %q but Value does not resolve it", key)
		}
	}
	if len(Keys()) != 12 {
		t.Errorf("record has %d keys, want 12", len(Keys()))
	}
}

func TestRedacted(t *testing.T) {
	o := fullRecord()
	r := o.Redacted()

	if strings.Contains(r.JWT, "payload") {
		t.Errorf("redacted jwt leaks content: %q", r.JWT)
	}
	if !strings.Contains(r.JWT, maskedValue) {
		t.Errorf("redacted jwt missing mask: %q", r.JWT)
	}
	// Original stays intact
	if !strings.Contains(o.JWT, "payload") {
		t.Error("Redacted() mutated the receiver")
	}
	// Short tokens are fully masked
	short := Overrides{JWT: "abc"}
	if short.Redacted().JWT != maskedValue {
		t.Errorf("short jwt should be fully masked, got %q", short.Redacted().JWT)
	}
	// Other fields untouched
	if r.CustomerOUID != o.CustomerOUID {
		t.Error("Redacted() should only touch the jwt")
	}
}
