package tax

import (
	"errors"
	"fmt"
)

// ErrInvalidTaxYear is returned when a tax year string is not one of the supported years.
var ErrInvalidTaxYear = errors.New("invalid tax year")

// Year identifies a UK tax year in "YYYY/YYYY" form.
type Year string

// Supported tax years.
const (
	Year2019To2020 Year = "2019/2020"
	Year2020To2021 Year = "2020/2021"
	Year2021To2022 Year = "2021/2022"
	Year2022To2023 Year = "2022/2023"
	Year2023To2024 Year = "2023/2024"
	Year2024To2025 Year = "2024/2025"
)

// Years returns the supported tax years in ascending order.
func Years() []Year {
	return []Year{
		Year2019To2020,
		Year2020To2021,
		Year2021To2022,
		Year2022To2023,
		Year2023To2024,
		Year2024To2025,
	}
}

// ParseYear validates a raw tax year string against the supported set.
func ParseYear(value string) (Year, error) {
	for _, year := range Years() {
		if string(year) == value {
			return year, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTaxYear, value)
}

func (y Year) String() string {
	return string(y)
}
