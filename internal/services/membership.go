package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Toggle actions for the membership-set operations (user favourites,
// apartment interesteds).
const (
	ToggleAdd    = "add"
	ToggleRemove = "remove"
)

// toggleRef adds or removes a reference in a set-like array field of a
// target document. Both the favourites and interesteds toggles funnel
// through here.
//
// add conflicts when the reference is already present, remove conflicts
// when it's absent, and anything else is invalid input. Both the target
// document and the counterpart must exist before any mutation happens.
// The filtered update makes the check-and-mutate a single store
// operation, so two concurrent toggles can't both succeed.
func toggleRef(ctx context.Context, target *mongo.Collection, targetID bson.ObjectID, field string, counterpart *mongo.Collection, counterpartID bson.ObjectID, action string) error {
	if action != ToggleAdd && action != ToggleRemove {
		return invalidf(fmt.Sprintf("unknown action %q", action))
	}

	n, err := counterpart.CountDocuments(ctx, bson.M{"_id": counterpartID})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundf("no document found with that ID")
	}
	n, err = target.CountDocuments(ctx, bson.M{"_id": targetID})
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundf("no document found with that ID")
	}

	var filter, update bson.M
	if action == ToggleAdd {
		filter = bson.M{"_id": targetID, field: bson.M{"$ne": counterpartID}}
		update = bson.M{"$push": bson.M{field: counterpartID}}
	} else {
		filter = bson.M{"_id": targetID, field: counterpartID}
		update = bson.M{"$pull": bson.M{field: counterpartID}}
	}

	res, err := target.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if action == ToggleAdd {
			return conflictf("reference already exists")
		}
		return conflictf("reference does not exist")
	}
	return nil
}

// parseID converts a client-provided hex id, reporting bad input instead
// of an opaque decode error.
func parseID(raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.ObjectID{}, invalidf(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}
