package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/konatebeh20/EduTrack/core/ingest"
	"github.com/konatebeh20/EduTrack/core/report"
	"github.com/konatebeh20/EduTrack/core/student"
	spreadsheetsvc "github.com/konatebeh20/EduTrack/services/spreadsheet"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	ingestSvc *ingest.Service
	reportSvc *report.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  import -students FILE [-courses FILE] [-grades FILE] - import spreadsheet data")
	fmt.Println("  runbatch [-program LABEL] [-term TERM] - send report cards to a cohort")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importStudents := importCmd.String("students", "", "Students workbook to import.")
	importCourses := importCmd.String("courses", "", "Course units workbook to import.")
	importGrades := importCmd.String("grades", "", "Grades workbook to import.")

	runBatchCmd := flag.NewFlagSet("runbatch", flag.ExitOnError)
	runBatchProgram := runBatchCmd.String("program", "", "Only process students of this program.")
	runBatchTerm := runBatchCmd.String("term", "", "Only aggregate grades of this term.")

	switch args[1] {
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importStudents == "" && *importCourses == "" && *importGrades == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importData(*importStudents, *importCourses, *importGrades)
	case "runbatch":
		if err := runBatchCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.runBatch(*runBatchProgram, *runBatchTerm)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) importData(studentsPath, coursesPath, gradesPath string) error {
	ctx := context.Background()

	// course units first so grade rows can resolve them
	if coursesPath != "" {
		summary, err := cli.importFile(ctx, coursesPath, cli.ingestSvc.ImportCourseUnits)
		if err != nil {
			return err
		}
		printImportSummary("course units", summary)
	}
	if studentsPath != "" {
		summary, err := cli.importFile(ctx, studentsPath, cli.ingestSvc.ImportStudents)
		if err != nil {
			return err
		}
		printImportSummary("students", summary)
	}
	if gradesPath != "" {
		summary, err := cli.importFile(ctx, gradesPath, cli.ingestSvc.ImportGrades)
		if err != nil {
			return err
		}
		printImportSummary("grades", summary)
	}
	return nil
}

func (cli *commandLine) importFile(
	ctx context.Context,
	path string,
	importFunc func(context.Context, []ingest.Row) (ingest.ImportSummary, error),
) (ingest.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.ImportSummary{}, err
	}
	defer f.Close()

	rows, err := spreadsheetsvc.Parse(f)
	if err != nil {
		return ingest.ImportSummary{}, err
	}
	return importFunc(ctx, rows)
}

func (cli *commandLine) runBatch(program, term string) error {
	summary, err := cli.reportSvc.Run(context.Background(), report.RunOptions{
		Filter: student.CohortFilter{Program: program},
		Term:   term,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d sent, %d failed, %d skipped\n",
		summary.RunID, summary.Sent, summary.Failed, summary.Skipped)
	for _, f := range summary.Failures {
		fmt.Printf("  student %d failed while %s: %s\n", f.StudentID, f.Stage, f.Reason)
	}
	return nil
}

func printImportSummary(what string, summary ingest.ImportSummary) {
	fmt.Printf("%s: %d imported, %d rejected\n", what, summary.Imported, summary.Rejected)
	for _, reason := range summary.Reasons {
		fmt.Printf("  %s\n", reason)
	}
}
