// Package report fills referee assignments into a DFBnet match report.
//
// The browser is a collaborator behind the Browser, Page and Frame interfaces, so
// the fill sequence can run against Chrome (see NewChrome), the DryRun driver
// (which prints every step) or a test fake.
//
// For one page the Processor:
//  1. waits for the DOM to load,
//  2. finds the frame that offers "Schiedsrichter hinzufügen",
//  3. checks that the frame shows the expected match context,
//  4. adds each referee returned by the Resolver, one at a time,
//  5. runs the Mannschaften follow-up.
//
// Each referee goes through Idle, OpeningForm, Filling and Confirming and ends in
// Done or Skipped. A failed step skips that referee only.
//
// Example usage:
//
//	p := report.NewProcessor(matcher, report.Options{Context: referee.DefaultTargetContext()})
//	page, rep, err := p.Open(ctx, browser, game)
//	if err != nil {
//		return err
//	}
//	defer page.Close()
//	fmt.Printf("%d filled, %d skipped\n", rep.Filled(), rep.Skipped())
package report
