package utils

import (
	"regexp"
)

var (
	curpPattern = regexp.MustCompile(`^[A-Z][AEIOUX][A-Z]{2}\d{6}[HM][A-Z]{5}[A-Z0-9]\d$`)
	rfcPattern  = regexp.MustCompile(`^[A-ZÑ&]{3,4}\d{6}[A-Z0-9]{3}$`)
	nssPattern  = regexp.MustCompile(`^\d{11}$`)
)

// ValidateCURP 18 位 CURP
func ValidateCURP(curp string) bool {
	return curpPattern.MatchString(curp)
}

// ValidateRFC 个人 13 位 / 法人 12 位
func ValidateRFC(rfc string) bool {
	return rfcPattern.MatchString(rfc)
}

func ValidateNSS(nss string) bool {
	return nssPattern.MatchString(nss)
}
