package regionvar

import (
	"fmt"
	"strings"
)

// DefaultArms lists the chromosome arms with their own treeseq files: both
// arms of each autosome, except the acrocentric chromosomes (13, 14, 15, 21,
// 22) whose short arms carry no assembled sequence.
const DefaultArms = "1_p,1_q,2_p,2_q,3_p,3_q,4_p,4_q,5_p,5_q,6_p,6_q,7_p,7_q,8_p,8_q,9_p,9_q,10_p,10_q,11_p,11_q,12_p,12_q,13_q,14_q,15_q,16_p,16_q,17_p,17_q,18_p,18_q,19_p,19_q,20_p,20_q,21_q,22_q"

// chromosomePlaceholder is the substitution token in treeseq file templates.
const chromosomePlaceholder = "{chromosome}"

// ParseArms splits and validates a comma-separated chromosome arm list like
// "1_p,1_q,2_p".
func ParseArms(spec string) ([]string, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("empty chromosome arm list")
	}
	arms := strings.Split(spec, ",")
	for i, arm := range arms {
		arms[i] = strings.TrimSpace(arm)
		if !validArm(arms[i]) {
			return nil, fmt.Errorf("invalid chromosome arm %q (want e.g. 7_p or 13_q)", arm)
		}
	}
	return arms, nil
}

func validArm(arm string) bool {
	chromosome, armLabel, found := strings.Cut(arm, "_")
	if !found {
		return false
	}
	if armLabel != "p" && armLabel != "q" {
		return false
	}

	switch chromosome {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
		"11", "12", "16", "17", "18", "19", "20", "X":
		return true
	case "13", "14", "15", "21", "22":
		return armLabel == "q"
	}
	return false
}

// TreeseqFile expands a treeseq filename template like
// "hgdp_tgp_sgdp_chr{chromosome}.dated.trees" for one chromosome arm.
func TreeseqFile(template, arm string) string {
	return strings.ReplaceAll(template, chromosomePlaceholder, arm)
}
