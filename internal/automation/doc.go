// Package automation stores household automation rules.
//
// A Rule pairs a free-text condition ("temperature > 25") with a free-text
// action ("turn_off light") and belongs to one home. Rules are stored
// declaratively; nothing in this service evaluates them.
//
// # Usage
//
//	repo := automation.NewSQLRepository(db)
//
//	rule := &automation.Rule{HomeID: 1, Condition: "motion_detected == true", Action: "activate_alarm"}
//	if err := automation.ValidateRule(rule); err != nil {
//	    return err
//	}
//	if err := repo.CreateRule(ctx, rule); err != nil {
//	    return err
//	}
package automation
