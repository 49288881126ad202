// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/event"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
)

// Discussion tuning.
const (
	// BondError is how far off an entity's estimate of another's bond can be.
	BondError = 0.1
	// BondForPersonal is the bond needed before personal questions are asked
	// or answered.
	BondForPersonal = 0.4
	// MaxInterest caps the interest a discussion starts with.
	MaxInterest = 20
	// MinInterest is the interest a discussion starts with at low bond.
	MinInterest = 2
)

// PersonalTopic is a personal question subject.
type PersonalTopic string

// Personal topics.
const (
	TopicFear PersonalTopic = "fear"
	TopicHope PersonalTopic = "hope"
)

// AllPersonalTopics lists every personal topic.
var AllPersonalTopics = []PersonalTopic{TopicFear, TopicHope}

// InfoTopic is a subject an entity can ask for information about.
type InfoTopic string

// Info topics.
const (
	TopicWaterSourceLocation InfoTopic = "water_source_location"
	TopicShelterLocation     InfoTopic = "shelter_location"
)

// memeKind is the kind of meme that answers the topic.
func (t InfoTopic) memeKind() entity.MemeKind {
	if t == TopicShelterLocation {
		return entity.MemeShelterAt
	}
	return entity.MemeWaterSourceAt
}

// LeadKind identifies a lead action.
type LeadKind string

// Lead kinds. The value is the tag of the encoded question.
const (
	AskOpinionOnEntity LeadKind = "opinion"
	AskPersonal        LeadKind = "personal"
	AskForInfo         LeadKind = "info"
)

// Lead is a question put to the discussion partner.
type Lead struct {
	Kind     LeadKind
	Entity   entity.ID
	Personal PersonalTopic
	Info     InfoTopic
}

// String encodes the question, e.g. "opinion:<id>" or "info:shelter_location".
func (l Lead) String() string {
	switch l.Kind {
	case AskOpinionOnEntity:
		return string(l.Kind) + ":" + string(l.Entity)
	case AskPersonal:
		return string(l.Kind) + ":" + string(l.Personal)
	default:
		return string(l.Kind) + ":" + string(l.Info)
	}
}

// ParseLead decodes a question produced by Lead.String.
func ParseLead(s string) (Lead, error) {
	tag, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Lead{}, fmt.Errorf("malformed discussion lead %q: no tag", s)
	}
	switch LeadKind(tag) {
	case AskOpinionOnEntity:
		return Lead{Kind: AskOpinionOnEntity, Entity: entity.ID(rest)}, nil
	case AskPersonal:
		topic := PersonalTopic(rest)
		if topic != TopicFear && topic != TopicHope {
			return Lead{}, fmt.Errorf("no such personal topic %q", rest)
		}
		return Lead{Kind: AskPersonal, Personal: topic}, nil
	case AskForInfo:
		topic := InfoTopic(rest)
		if topic != TopicWaterSourceLocation && topic != TopicShelterLocation {
			return Lead{}, fmt.Errorf("no such info topic %q", rest)
		}
		return Lead{Kind: AskForInfo, Info: topic}, nil
	default:
		return Lead{}, fmt.Errorf("unknown discussion lead tag %q", tag)
	}
}

// Opinion is a view on another entity.
type Opinion string

// Opinions.
const (
	Positive Opinion = "positive"
	Neutral  Opinion = "neutral"
	Negative Opinion = "negative"
)

// ReplyKind identifies a response.
type ReplyKind string

// Reply kinds.
const (
	GiveOpinion  ReplyKind = "give_opinion"
	GivePersonal ReplyKind = "give_personal"
	GiveInfo     ReplyKind = "give_info"
	Balk         ReplyKind = "balk"
)

// Reply answers a lead.
type Reply struct {
	Kind     ReplyKind
	Opinion  Opinion
	Personal PersonalTopic
	Text     string
	Info     InfoTopic
	// Meme is shared with the asker for GiveInfo.
	Meme entity.Meme
}

func (r Reply) log() gamelog.Reply {
	out := gamelog.Reply{Kind: string(r.Kind)}
	switch r.Kind {
	case GiveOpinion:
		out.Opinion = string(r.Opinion)
	case GivePersonal:
		out.Topic = string(r.Personal)
		out.Text = r.Text
	case GiveInfo:
		out.Topic = string(r.Info)
	}
	return out
}

// DiscussionKind identifies a discussion sub-action.
type DiscussionKind uint8

// Discussion sub-action kinds.
const (
	DiscussLoseInterest DiscussionKind = iota
	DiscussLead
	DiscussRespond
)

// DiscussionAction is only resolvable while in a discussion focus. Every
// discussion action costs interest.
type DiscussionAction struct {
	Kind  DiscussionKind
	Lead  Lead
	Reply Reply
}

// LoseInterest drains interest faster than other discussion actions.
func LoseInterest() DiscussionAction { return DiscussionAction{Kind: DiscussLoseInterest} }

// LeadWith asks a question. Only the lead may ask.
func LeadWith(l Lead) DiscussionAction { return DiscussionAction{Kind: DiscussLead, Lead: l} }

// RespondWith answers the partner's question and takes the lead.
func RespondWith(r Reply) DiscussionAction { return DiscussionAction{Kind: DiscussRespond, Reply: r} }

// leadActions proposes questions for an entity leading a discussion.
func leadActions(f entity.Focus, ctx *SignalContext, actions *WeightedActions) {
	me := ctx.Entity
	partner := ctx.Entities.ByID(f.With)
	if partner == nil {
		// Resolution ends the discussion when the partner is gone.
		actions.Add(5, Discuss(LoseInterest()))
		return
	}
	memes := me.Memes()

	var leads []WeightedAction
	associates := me.Relations.AssociateIDs()
	if len(associates) > 0 {
		weight := 10 / len(associates)
		for _, id := range associates {
			leads = append(leads, WeightedAction{weight, Discuss(LeadWith(Lead{Kind: AskOpinionOnEntity, Entity: id}))})
		}
	}

	leads = append(leads,
		WeightedAction{pick(len(memes.ShelterLocations()) > 0, 5, 20), Discuss(LeadWith(Lead{Kind: AskForInfo, Info: TopicShelterLocation}))},
		WeightedAction{pick(len(memes.WaterSourceLocations()) > 0, 5, 20), Discuss(LeadWith(Lead{Kind: AskForInfo, Info: TopicWaterSourceLocation}))},
	)

	estimatedBond := partner.Relations.Bond(me.ID) + (ctx.Rng.Float64()*2-1)*BondError
	friendliness := me.Characteristic(entity.Friendliness)
	if friendliness.IsHigh() {
		estimatedBond += BondError
	}
	if friendliness.IsLow() {
		estimatedBond -= BondError
	}
	if estimatedBond > BondForPersonal {
		for _, topic := range AllPersonalTopics {
			leads = append(leads, WeightedAction{20, Discuss(LeadWith(Lead{Kind: AskPersonal, Personal: topic}))})
		}
	}

	asked := 0
	for _, l := range leads {
		if memes.AskedBefore(partner.ID, l.Action.Discussion.Lead.String()) {
			continue
		}
		actions.Add(l.Weight, l.Action)
		asked++
	}
	if asked == 0 {
		actions.Add(5, Discuss(LoseInterest()))
	}
}

// respondTo answers a question asked by the discussion partner.
func respondTo(ev *event.Event, ctx *SignalContext, actions *WeightedActions) {
	f := ctx.Focus
	if !f.Is(entity.FocusDiscussion) || f.With != ev.Subject {
		return
	}
	asker := ctx.Entities.ByID(ev.Subject)
	if asker == nil {
		return
	}
	lead, err := ParseLead(ev.Question)
	if err != nil {
		slog.Warn("ignoring malformed question", "question", ev.Question, "error", err)
		return
	}
	actions.Add(50, Discuss(RespondWith(answer(lead, ctx.Entity, asker, ctx))))
}

func answer(lead Lead, me, asker *entity.Entity, ctx *SignalContext) Reply {
	switch lead.Kind {
	case AskOpinionOnEntity:
		switch {
		case me.Relations.Like(lead.Entity):
			return Reply{Kind: GiveOpinion, Opinion: Positive}
		case me.Relations.Dislike(lead.Entity):
			return Reply{Kind: GiveOpinion, Opinion: Negative}
		default:
			return Reply{Kind: GiveOpinion, Opinion: Neutral}
		}
	case AskPersonal:
		bg := me.Attributes.Background
		if bg == nil || me.Relations.Bond(asker.ID) < BondForPersonal {
			return Reply{Kind: Balk}
		}
		text := bg.Fear
		if lead.Personal == TopicHope {
			text = bg.Hope
		}
		return Reply{Kind: GivePersonal, Personal: lead.Personal, Text: text}
	default:
		meme, ok := me.Memes().SampleShareable(asker.Attributes.Memes, ctx.Rng, lead.Info.memeKind())
		if !ok {
			return Reply{Kind: Balk}
		}
		return Reply{Kind: GiveInfo, Info: lead.Info, Meme: meme}
	}
}

func (r *resolver) discuss(d DiscussionAction) Result {
	me := r.me
	f := me.Focus()
	if !f.Is(entity.FocusDiscussion) {
		slog.Warn("discussion action outside of a discussion", "entity_id", me.ID)
		return resultNoEffect
	}

	// A partner that left ends the discussion without a farewell since it may
	// no longer be nearby.
	partner := r.ctx.Entities.ByID(f.With)
	if partner == nil {
		slog.Warn("discussion partner does not exist", "entity_id", me.ID, "partner", f.With)
		me.SetFocus(entity.Unfocused())
		return resultNoEffect
	}
	if pf := partner.Focus(); !pf.Is(entity.FocusDiscussion) || pf.With != me.ID {
		me.SetFocus(entity.Unfocused())
		return resultNoEffect
	}

	loss := 1
	if d.Kind == DiscussLoseInterest {
		loss = 3
	}
	f.Interest = max(f.Interest-loss, 0)
	if f.Interest == 0 {
		me.SetFocus(entity.Unfocused())
		r.send(gamelog.ForPair(me, partner.ID, gamelog.Of(gamelog.EntityFarewell)))
		return resultNoEffect
	}

	switch d.Kind {
	case DiscussLead:
		question := d.Lead.String()
		me.Memes().RememberAsked(partner.ID, question)
		f.IsLead = false
		me.SetFocus(f)

		event.Of(event.Asked, me.ID).
			Targets(event.ToEntity(partner.ID)).
			WithQuestion(question).
			Add(r.ctx.Events)
		r.send(gamelog.ForPair(me, partner.ID, gamelog.Ask(question)))
	case DiscussRespond:
		f.IsLead = true
		me.SetFocus(f)
		r.send(gamelog.ForPair(me, partner.ID, gamelog.Respond(d.Reply.log())))
		if d.Reply.Kind == GiveInfo {
			return withEffect(SideEffect{Kind: EffectShareMeme, Entity: partner.ID, Meme: d.Reply.Meme})
		}
	default:
		me.SetFocus(f)
		r.send(gamelog.ForPair(me, partner.ID, gamelog.Of(gamelog.EntityLoseInterest)))
	}
	return resultOk
}
