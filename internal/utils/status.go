package utils

import "github.com/mahirjain10/image-dimension-converter/internal/types"

func InitReport(outputDir string) *types.Report {
	return &types.Report{Status: types.PROCESSED, OutputDir: outputDir, Files: []string{}}
}

// MarkFailed flips report to FAILED, keeping the files written before err.
func MarkFailed(report *types.Report, err error) *types.Report {
	report.Status = types.FAILED
	if err != nil {
		report.ErrorMsg = err.Error()
	}
	return report
}
