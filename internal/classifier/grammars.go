package classifier

import "TPISync/internal/model"

// 金额中可能出现的空格变体
const amountExpr = `([\d \x{00a0}\x{202f}\x{2009}]+)`

// DefaultGrammars 语法按从具体到宽泛排列：若一条语法的匹配集是另一条的子集，它必须排在前面
func DefaultGrammars() []Grammar {
	return []Grammar{
		newGrammar(model.ActivityBuyingLand,
			`(.+?) viens d'acheter `+amountExpr+` ?m² de terrain à (.+?) pour un agrandissement\.`,
			actor, amount, city),
		newGrammar(model.ActivityBuyingRide,
			`(.+?) à (.+?) viens d'annoncer l'arrivée d'un (.+)\.`,
			actorPark, city, ride),
		newGrammar(model.ActivityBuyingPark,
			`(.+?) vient d'acquérir des terrains pour implanter (.+?) à (.+?)\.`,
			actor, actorPark, city),
		newGrammar(model.ActivityBuyingRideFromOther,
			`(.+?) vient d'acheter un (.+?) à (.+?)\.`,
			actorPark, ride, victimPark),
		newGrammar(model.ActivitySellingRide,
			`(.+?) à (.+?) vient de mettre en (?:vente )?(.+?) pour `+amountExpr+` ?€\.`,
			actorPark, city, ride, amount),
		newGrammar(model.ActivityDestructRide,
			`(.+?) à (.+?) vient d'annoncer la destruction de (.+?)\.`,
			actorPark, city, ride),
	}
}
